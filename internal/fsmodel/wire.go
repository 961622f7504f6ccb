package fsmodel

import "time"

// WireTimestamp is the panel's on-the-wire timestamp representation.
type WireTimestamp struct {
	SecsSinceEpoch  int64 `json:"secs_since_epoch"`
	NanosSinceEpoch int64 `json:"nanos_since_epoch"`
}

// Time converts the wire pair into a time.Time.
func (t WireTimestamp) Time() time.Time {
	return time.Unix(t.SecsSinceEpoch, t.NanosSinceEpoch).UTC()
}

// WireEntry is a raw server entry record. Paths are sometimes
// backslash-prefixed and the timestamp sub-objects are optional.
type WireEntry struct {
	Name         string         `json:"name"`
	Path         string         `json:"path"`
	Size         int64          `json:"size"`
	IsDirectory  bool           `json:"directory"`
	Created      *WireTimestamp `json:"created,omitempty"`
	LastModified *WireTimestamp `json:"last_modified,omitempty"`
}

// WireListing is the raw response of the directory-listing endpoint.
type WireListing struct {
	Parent  *string     `json:"parent"`
	Entries []WireEntry `json:"entries"`
}

// EntryFromWire converts a raw server record into a canonical Entry. An
// absent timestamp sub-object leaves the corresponding field zero.
func EntryFromWire(w WireEntry) Entry {
	e := Entry{
		Name:        w.Name,
		Path:        w.Path,
		Size:        w.Size,
		IsDirectory: w.IsDirectory,
	}
	if w.Created != nil {
		e.CreatedAt = w.Created.Time()
	}
	if w.LastModified != nil {
		e.ModifiedAt = w.LastModified.Time()
	}
	return Normalize(e)
}

// ListingFromWire converts a raw listing response, normalizing every entry.
func ListingFromWire(w WireListing) Listing {
	l := Listing{
		ParentPath: w.Parent,
		Entries:    make([]Entry, 0, len(w.Entries)),
	}
	for _, we := range w.Entries {
		l.Entries = append(l.Entries, EntryFromWire(we))
	}
	return l
}
