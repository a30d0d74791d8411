package cart

import (
	"context"
	"strconv"
)

// ItemCounter is the slice of Service the badge needs.
type ItemCounter interface {
	GetItemCount(ctx context.Context, userID string) (int, error)
}

// Badge is the item count shown next to the cart link.
type Badge struct {
	Count int `json:"count"`
}

// Label formats the count for a small badge
func (b Badge) Label() string {
	if b.Count > 99 {
		return "99+"
	}
	return strconv.Itoa(b.Count)
}

// Empty reports whether the badge should be hidden
func (b Badge) Empty() bool {
	return b.Count == 0
}

// CountBadge reads the user's item count.
func CountBadge(ctx context.Context, counter ItemCounter, userID string) (Badge, error) {
	count, err := counter.GetItemCount(ctx, userID)
	if err != nil {
		return Badge{}, err
	}
	return Badge{Count: count}, nil
}
