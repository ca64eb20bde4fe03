package ws

import (
	"encoding/json"
	"sync"
	"time"
)

// BoardEntry is one line of the live departures board.
type BoardEntry struct {
	TripID    uint   `json:"trip_id"`
	Mode      string `json:"mode"`
	Operator  string `json:"operator"`
	Route     string `json:"route"`
	Status    string `json:"status"`
	DepartAt  int64  `json:"depart_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// BoardHub streams trip status changes to connected clients; admin status
// updates push entries in, new connections get the current board snapshot.
type BoardHub struct {
	*Hub
	mu      sync.RWMutex
	entries map[uint]BoardEntry
}

func NewBoardHub() *BoardHub {
	return &BoardHub{
		Hub:     NewHub(),
		entries: make(map[uint]BoardEntry),
	}
}

// UpdateStatus records and broadcasts a trip's status change.
func (b *BoardHub) UpdateStatus(tripID uint, mode, operator, route, status string, departAt time.Time) {
	entry := BoardEntry{
		TripID:    tripID,
		Mode:      mode,
		Operator:  operator,
		Route:     route,
		Status:    status,
		DepartAt:  departAt.Unix(),
		UpdatedAt: time.Now().Unix(),
	}
	b.mu.Lock()
	b.entries[tripID] = entry
	b.mu.Unlock()
	b.BroadcastAll(map[string]interface{}{"type": "status", "entry": entry})
}

// Snapshot returns the current board for initial load, departed and
// cancelled trips included until they age out of the map.
func (b *BoardHub) Snapshot() []BoardEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	list := make([]BoardEntry, 0, len(b.entries))
	for _, e := range b.entries {
		list = append(list, e)
	}
	return list
}

// SendSnapshot pushes the board to one client.
func (b *BoardHub) SendSnapshot(c *Client) {
	data, _ := json.Marshal(map[string]interface{}{"type": "board", "entries": b.Snapshot()})
	select {
	case c.Send <- data:
	default:
	}
}
