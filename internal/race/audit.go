package race

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// EventKind categorizes audit events.
type EventKind string

const (
	// EventRecall records a general recall of one fleet.
	EventRecall EventKind = "general_recall"
	// EventDisposition records a bulk auto-DNF pass.
	EventDisposition EventKind = "auto_disposition"
	// EventRatingChange records a new rating certificate being applied.
	EventRatingChange EventKind = "rating_change"
	// EventRecompute records a derived-result recomputation pass.
	EventRecompute EventKind = "recompute"
	// EventSignal records a start-sequence signal transition.
	EventSignal EventKind = "signal"
)

// Event is one append-only audit record. Its ID is content-addressed over
// the canonical JSON of (kind, race, token, payload, at) so writing the
// same event twice is a no-op at the store layer.
type Event struct {
	ID     string    `json:"id"`
	Kind   EventKind `json:"kind"`
	RaceID string    `json:"race_id"`
	// Token correlates the event with the operation that produced it
	// (UUIDv7, assigned by the engine).
	Token   string         `json:"token"`
	At      time.Time      `json:"at"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Domain prefix for content-addressed event identity. The version suffix
// enables future algorithm migration.
const eventDomain = "raceops/event/v1"

// EventID computes the content-addressed ID for an audit event. The ID is
// stable across restarts given the same inputs. Payload values must be
// canonical-JSON encodable (no floats, no nulls).
func EventID(kind EventKind, raceID, token string, at time.Time, payload map[string]any) (string, error) {
	obj := map[string]any{
		"kind":    string(kind),
		"race_id": raceID,
		"token":   token,
		"at":      at.UTC().Format(time.RFC3339Nano),
	}
	if payload != nil {
		obj["payload"] = payload
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("EventID: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(eventDomain))
	h.Write([]byte{0x00}) // null separator prevents domain/data boundary ambiguity
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// NewEvent builds an Event with its content-addressed ID filled in.
func NewEvent(kind EventKind, raceID, token string, at time.Time, payload map[string]any) (Event, error) {
	id, err := EventID(kind, raceID, token, at, payload)
	if err != nil {
		return Event{}, err
	}
	return Event{ID: id, Kind: kind, RaceID: raceID, Token: token, At: at, Payload: payload}, nil
}
