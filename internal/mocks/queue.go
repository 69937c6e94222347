package mocks

import "sync"

// MockMessageQueue is a mock implementation of queue.MessageQueue
type MockMessageQueue struct {
	mu                sync.Mutex
	PublishedMessages map[string][][]byte
	Subscribers       map[string][]func([]byte) error
	PublishFunc       func(topic string, data []byte) error
	SubscribeFunc     func(topic string, handler func([]byte) error) error
	CloseFunc         func() error
}

func NewMockMessageQueue() *MockMessageQueue {
	return &MockMessageQueue{
		PublishedMessages: make(map[string][][]byte),
		Subscribers:       make(map[string][]func([]byte) error),
	}
}

func (m *MockMessageQueue) Publish(topic string, data []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(topic, data)
	}
	m.mu.Lock()
	m.PublishedMessages[topic] = append(m.PublishedMessages[topic], data)
	m.mu.Unlock()
	return nil
}

func (m *MockMessageQueue) Subscribe(topic string, handler func([]byte) error) error {
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(topic, handler)
	}
	m.mu.Lock()
	m.Subscribers[topic] = append(m.Subscribers[topic], handler)
	m.mu.Unlock()
	return nil
}

func (m *MockMessageQueue) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Deliver hands data to every subscriber of topic, as a broker would.
func (m *MockMessageQueue) Deliver(topic string, data []byte) []error {
	m.mu.Lock()
	handlers := append([]func([]byte) error(nil), m.Subscribers[topic]...)
	m.mu.Unlock()

	var errs []error
	for _, h := range handlers {
		if err := h(data); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// GetPublishedMessages returns all messages published to a topic
func (m *MockMessageQueue) GetPublishedMessages(topic string) [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.PublishedMessages[topic]
}

// ClearMessages clears all published messages
func (m *MockMessageQueue) ClearMessages() {
	m.mu.Lock()
	m.PublishedMessages = make(map[string][][]byte)
	m.mu.Unlock()
}
