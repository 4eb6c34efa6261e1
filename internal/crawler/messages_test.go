package crawler_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openengine/openengine/internal/crawler"
)

func TestMessages_PublishAndDrain(t *testing.T) {
	m := crawler.NewMessages(8)

	m.Publish("one")
	m.Publish("two")

	assert.Equal(t, []string{"one", "two"}, m.Drain())
	assert.Empty(t, m.Drain())
}

func TestMessages_PublishDropsOldestWhenFull(t *testing.T) {
	m := crawler.NewMessages(2)

	m.Publish("one")
	m.Publish("two")
	m.Publish("three")

	assert.Equal(t, []string{"two", "three"}, m.Drain())
}

func TestMessages_PublishNeverBlocks(t *testing.T) {
	m := crawler.NewMessages(1)

	// Far more publishes than capacity, with no consumer.
	for i := 0; i < 100; i++ {
		m.Publish(fmt.Sprintf("msg-%d", i))
	}

	assert.Equal(t, []string{"msg-99"}, m.Drain())
}

func TestMessages_Receive(t *testing.T) {
	m := crawler.NewMessages(4)
	m.Publish("hello")

	select {
	case msg := <-m.C():
		assert.Equal(t, "hello", msg)
	default:
		t.Fatal("expected a buffered message")
	}
}
