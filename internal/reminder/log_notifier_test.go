package reminder

// activeNotifications returns the currently shown notifications, one per ID.
func (n *LogNotifier) activeNotifications() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]Notification, 0, len(n.active))
	for _, notification := range n.active {
		out = append(out, notification)
	}
	return out
}

// postedCount returns the number of successful Notify calls.
func (n *LogNotifier) postedCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.posted
}

// hasChannel reports whether the channel was created.
func (n *LogNotifier) hasChannel(id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, ok := n.channels[id]
	return ok
}
