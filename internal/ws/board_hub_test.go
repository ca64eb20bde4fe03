package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardHubBroadcast(t *testing.T) {
	hub := NewBoardHub()
	client := &Client{UserID: 1, Send: make(chan []byte, 4)}
	hub.Register(client)
	defer client.Close()

	departAt := time.Now().Add(2 * time.Hour)
	hub.UpdateStatus(7, "BUS", "Modern Coast", "Nairobi - Mombasa", "BOARDING", departAt)

	select {
	case data := <-client.Send:
		var msg struct {
			Type  string     `json:"type"`
			Entry BoardEntry `json:"entry"`
		}
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, "status", msg.Type)
		assert.Equal(t, uint(7), msg.Entry.TripID)
		assert.Equal(t, "BOARDING", msg.Entry.Status)
		assert.Equal(t, departAt.Unix(), msg.Entry.DepartAt)
	default:
		t.Fatal("expected a broadcast message")
	}
}

func TestBoardHubSnapshot(t *testing.T) {
	hub := NewBoardHub()
	hub.UpdateStatus(1, "TRAIN", "SGR", "Nairobi - Mombasa", "SCHEDULED", time.Now())
	hub.UpdateStatus(2, "FLIGHT", "Jambojet", "Nairobi - Kisumu", "DELAYED", time.Now())
	hub.UpdateStatus(1, "TRAIN", "SGR", "Nairobi - Mombasa", "DEPARTED", time.Now())

	snapshot := hub.Snapshot()
	require.Len(t, snapshot, 2)
	byID := map[uint]BoardEntry{}
	for _, e := range snapshot {
		byID[e.TripID] = e
	}
	assert.Equal(t, "DEPARTED", byID[1].Status)
	assert.Equal(t, "DELAYED", byID[2].Status)
}

func TestBoardHubSendSnapshotToNewClient(t *testing.T) {
	hub := NewBoardHub()
	hub.UpdateStatus(1, "BUS", "Easy Coach", "Nairobi - Kisumu", "SCHEDULED", time.Now())

	client := &Client{UserID: 2, Send: make(chan []byte, 4)}
	hub.Register(client)
	defer client.Close()
	hub.SendSnapshot(client)

	select {
	case data := <-client.Send:
		var msg struct {
			Type    string       `json:"type"`
			Entries []BoardEntry `json:"entries"`
		}
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, "board", msg.Type)
		require.Len(t, msg.Entries, 1)
	default:
		t.Fatal("expected a snapshot message")
	}
}

func TestHubUnregisterOnClose(t *testing.T) {
	hub := NewHub()
	client := &Client{UserID: 1, Send: make(chan []byte, 1)}
	hub.Register(client)
	assert.Equal(t, 1, hub.ClientCount())

	client.Close()
	assert.Equal(t, 0, hub.ClientCount())

	// closing twice is safe
	client.Close()
}
