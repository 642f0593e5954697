package main

import (
	"context"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

func TestConsume_HandlesInOrderUntilClosed(t *testing.T) {
	updates := make(chan tgbotapi.Update, 3)
	for i := 1; i <= 3; i++ {
		updates <- tgbotapi.Update{UpdateID: i}
	}
	close(updates)

	var got []int
	consume(context.Background(), updates, func(u tgbotapi.Update) { got = append(got, u.UpdateID) })
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestConsume_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		consume(ctx, make(chan tgbotapi.Update), func(tgbotapi.Update) {})
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consume did not return after cancel")
	}
}

func TestShortHash(t *testing.T) {
	a := shortHash("123:abc")
	assert.Len(t, a, 16)
	assert.Equal(t, a, shortHash("123:abc"))
	assert.NotEqual(t, a, shortHash("123:abd"))
	assert.NotContains(t, a, "abc")
}
