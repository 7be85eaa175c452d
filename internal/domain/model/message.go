package model

// MessageDefinition is a named, persisted unit of content, recipients and an
// optional recurrence rule. The store owns definitions; the delivery engine
// and the scheduler only ever read snapshots of them.
type MessageDefinition struct {
	Text       string    `yaml:"text" json:"text"`
	ImagePaths []string  `yaml:"image_paths" json:"image_paths"`
	Recipients []string  `yaml:"recipients" json:"recipients"`
	Schedule   *Schedule `yaml:"schedule" json:"schedule"`
}

// HasPayload reports whether delivering the definition would send anything.
func (m *MessageDefinition) HasPayload() bool {
	return m.Text != "" || len(m.ImagePaths) > 0
}

// Clone returns a deep copy so callers can hold a snapshot across a delivery
// while the admin front end keeps mutating the store.
func (m *MessageDefinition) Clone() *MessageDefinition {
	cp := MessageDefinition{Text: m.Text}
	cp.ImagePaths = append([]string(nil), m.ImagePaths...)
	cp.Recipients = append([]string(nil), m.Recipients...)
	if m.Schedule != nil {
		s := *m.Schedule
		cp.Schedule = &s
	}
	return &cp
}
