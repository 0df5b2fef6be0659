package feed

import "sort"

// Apply reduces a push event into a new message list. The input list is
// never mutated. Rules:
//
//   - receive-message appends unless the id is already present, keeping
//     the list ordered oldest-to-newest by creation time.
//   - message-updated replaces the mutable fields of the matching entry;
//     id, sender and creation time never change. Updates for tombstoned
//     messages are ignored: deletion is terminal and an edit must not
//     resurrect content.
//   - message-deleted tombstones the matching entry in place. The entry
//     keeps its feed position; its content becomes the tombstone and its
//     attachment reference is dropped.
//
// Events for ids not present in the list are no-ops; the caller is
// expected to reload history if it cares about the gap.
func Apply(list []Message, ev Event) []Message {
	switch ev.Type {
	case EventReceiveMessage:
		if indexOf(list, ev.Message.ID) >= 0 {
			return list
		}
		out := make([]Message, len(list), len(list)+1)
		copy(out, list)
		out = append(out, ev.Message)
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].ID < out[j].ID
			}
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
		return out

	case EventMessageUpdated:
		i := indexOf(list, ev.Message.ID)
		if i < 0 || list[i].Deleted {
			return list
		}
		out := make([]Message, len(list))
		copy(out, list)
		m := &out[i]
		m.Kind = ev.Message.Kind
		m.Content = ev.Message.Content
		m.Attachment = ev.Message.Attachment
		m.Edited = true
		m.EditedAt = ev.Message.EditedAt
		return out

	case EventMessageDeleted:
		i := indexOf(list, ev.Message.ID)
		if i < 0 || list[i].Deleted {
			return list
		}
		out := make([]Message, len(list))
		copy(out, list)
		m := &out[i]
		m.Deleted = true
		m.Content = TombstoneContent
		m.Attachment = nil
		return out
	}
	return list
}

func indexOf(list []Message, id uint) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}
