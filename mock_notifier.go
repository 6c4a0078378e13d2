package main

type MockNotifier struct {
	Messages []string
	Err      error
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{Messages: make([]string, 0)}
}

func (n *MockNotifier) Notify(message string) error {
	n.Messages = append(n.Messages, message)
	return n.Err
}
