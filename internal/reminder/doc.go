// Package reminder implements the periodic "pending tasks" notification.
//
// The job is stateless: every run makes sure the notification channel exists
// and then posts notification 1, replacing the one from the previous run. It
// neither reads nor writes tasks. Delivery is delegated to a Notifier; the
// log notifier suits headless servers and tests, the FCM notifier pushes
// through Firebase Cloud Messaging.
package reminder
