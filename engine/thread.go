package engine

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/mboyle/threadline-api/models"
	"github.com/mboyle/threadline-api/stores"
)

// Thread is the read-side view of a reply chain: the root message plus
// its direct replies. The view is deliberately flat even though parent
// links may nest arbitrarily deep.
type Thread struct {
	Root    *models.Message   `json:"root"`
	Members []*models.Message `json:"members"`
}

// RootOf walks the parent chain upward from the given message until a
// message with no parent is found. A revisited id means the chain is
// cyclic and resolution fails with ErrThreadCycle.
func (e *Engine) RootOf(ctx context.Context, messageID string) (*models.Message, error) {
	current, err := e.byIDMapped(ctx, messageID)
	if err != nil {
		return nil, err
	}

	visited := map[string]bool{current.ID: true}
	for current.ParentID != nil {
		parent, err := e.byIDMapped(ctx, *current.ParentID)
		if err != nil {
			return nil, err
		}
		if visited[parent.ID] {
			return nil, ErrThreadCycle
		}
		visited[parent.ID] = true
		current = parent
	}
	return current, nil
}

// Depth returns how many hops separate the message from its thread root:
// 0 for roots, parent depth plus one for every reply
func (e *Engine) Depth(ctx context.Context, messageID string) (int, error) {
	current, err := e.byIDMapped(ctx, messageID)
	if err != nil {
		return 0, err
	}

	depth := 0
	visited := map[string]bool{current.ID: true}
	for current.ParentID != nil {
		parent, err := e.byIDMapped(ctx, *current.ParentID)
		if err != nil {
			return 0, err
		}
		if visited[parent.ID] {
			return 0, ErrThreadCycle
		}
		visited[parent.ID] = true
		depth++
		current = parent
	}
	return depth, nil
}

// ThreadMembers returns the root and its direct replies ordered by
// timestamp ascending. Grandchildren are not included; the reference
// aggregation is one level deep.
func (e *Engine) ThreadMembers(ctx context.Context, rootID string) ([]*models.Message, error) {
	root, err := e.byIDMapped(ctx, rootID)
	if err != nil {
		return nil, err
	}
	replies, err := e.messages.Replies(ctx, root.ID)
	if err != nil {
		return nil, err
	}

	members := append([]*models.Message{root}, replies...)
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Timestamp.Before(members[j].Timestamp)
	})
	return members, nil
}

// ReplyCount returns the number of direct replies under root
func (e *Engine) ReplyCount(ctx context.Context, rootID string) (int, error) {
	replies, err := e.messages.Replies(ctx, rootID)
	if err != nil {
		return 0, err
	}
	return len(replies), nil
}

// LastActivity returns the latest timestamp across the root and its
// direct replies. Deeper descendants are intentionally not considered.
func (e *Engine) LastActivity(ctx context.Context, rootID string) (time.Time, error) {
	root, err := e.byIDMapped(ctx, rootID)
	if err != nil {
		return time.Time{}, err
	}
	last := root.Timestamp

	replies, err := e.messages.Replies(ctx, root.ID)
	if err != nil {
		return time.Time{}, err
	}
	for _, reply := range replies {
		if reply.Timestamp.After(last) {
			last = reply.Timestamp
		}
	}
	return last, nil
}

// GetThread resolves the thread containing messageID: its root and the
// flat member list
func (e *Engine) GetThread(ctx context.Context, messageID string) (*Thread, error) {
	root, err := e.RootOf(ctx, messageID)
	if err != nil {
		return nil, err
	}
	members, err := e.ThreadMembers(ctx, root.ID)
	if err != nil {
		return nil, err
	}
	return &Thread{Root: root, Members: members}, nil
}

// byIDMapped fetches a message and translates store-level not-found into
// the engine taxonomy
func (e *Engine) byIDMapped(ctx context.Context, id string) (*models.Message, error) {
	msg, err := e.messages.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, stores.ErrMessageNotFound) {
			return nil, &NotFoundError{Resource: "message", ID: id}
		}
		return nil, err
	}
	return msg, nil
}
