package models

// AvailabilitySlot tracks remaining capacity for one service on one slot key
// (YYYY-MM-DD). Mutated only by the availability guard under optimistic
// concurrency control; Version is persisted so CAS survives restarts.
// Invariant: 0 ≤ Reserved ≤ Capacity at all times.
type AvailabilitySlot struct {
	ServiceID string `bson:"service_id" json:"serviceId"`
	SlotKey   string `bson:"slot_key" json:"slotKey"`
	Capacity  int    `bson:"capacity" json:"capacity"`
	Reserved  int    `bson:"reserved" json:"reserved"`
	Version   int64  `bson:"version" json:"version"`
}

// Remaining returns the unreserved capacity.
func (s AvailabilitySlot) Remaining() int {
	return s.Capacity - s.Reserved
}

// ReservationToken identifies one successful capacity hold. It is the only
// handle through which held capacity can be released.
type ReservationToken struct {
	ID        string `bson:"id" json:"id"`
	ServiceID string `bson:"service_id" json:"serviceId"`
	SlotKey   string `bson:"slot_key" json:"slotKey"`
	Units     int    `bson:"units" json:"units"`
}
