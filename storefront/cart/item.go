package cart

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Item is one course in the cart. Extra holds any other course fields the
// stored object carried; they are written back unchanged.
type Item struct {
	ID    string                     `json:"id"`
	Title string                     `json:"title"`
	Price float64                    `json:"price"`
	Image string                     `json:"image,omitempty"`
	Extra map[string]json.RawMessage `json:"-"`
}

var itemKeys = []string{"id", "title", "price", "image"}

// UnmarshalJSON accepts what older clients wrote: numeric ids, and prices that
// are missing, null or not numbers (read as 0).
func (i *Item) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}

	*i = Item{
		ID:    normalizeID(fields["id"]),
		Title: stringOrEmpty(fields["title"]),
		Image: stringOrEmpty(fields["image"]),
	}

	var price float64
	if raw := bytes.TrimSpace(fields["price"]); len(raw) > 0 && raw[0] != '"' && json.Unmarshal(raw, &price) == nil {
		i.Price = price
	}

	for _, k := range itemKeys {
		delete(fields, k)
	}
	if len(fields) > 0 {
		i.Extra = fields
	}
	return nil
}

func (i Item) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(i.Extra)+len(itemKeys))
	for k, v := range i.Extra {
		out[k] = v
	}
	out["id"] = i.ID
	out["title"] = i.Title
	out["price"] = i.Price
	if i.Image != "" {
		out["image"] = i.Image
	}
	return json.Marshal(out)
}

func normalizeID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		if f, err := strconv.ParseFloat(n.String(), 64); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	return ""
}

func stringOrEmpty(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}
