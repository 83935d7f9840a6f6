package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"tracker/internal/core"
)

// PartitionRef names a partition on the wire.
type PartitionRef struct {
	Category string `json:"category"`
	Subcat   string `json:"subcat"`
}

// RefreshMessage asks every open view of the listed partitions to redraw.
// It carries no entry data; consumers reload from the store.
type RefreshMessage struct {
	Partitions []PartitionRef `json:"partitions"`
	Timestamp  time.Time      `json:"timestamp"`
}

func NewRefreshMessage(partitions ...core.Partition) *RefreshMessage {
	refs := make([]PartitionRef, 0, len(partitions))
	seen := make(map[core.Partition]bool, len(partitions))
	for _, p := range partitions {
		if seen[p] {
			continue
		}
		seen[p] = true
		refs = append(refs, PartitionRef{Category: string(p.Category), Subcat: p.Subcat})
	}
	return &RefreshMessage{
		Partitions: refs,
		Timestamp:  time.Now(),
	}
}

// CorePartitions converts the message back to domain partitions, rejecting unknown ones.
func (m *RefreshMessage) CorePartitions() ([]core.Partition, error) {
	out := make([]core.Partition, 0, len(m.Partitions))
	for _, ref := range m.Partitions {
		p := core.NewPartition(core.Category(ref.Category), ref.Subcat)
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("partition %s/%s: %w", ref.Category, ref.Subcat, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *RefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RefreshMessageFromJSON(data []byte) (*RefreshMessage, error) {
	var msg RefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
