package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Payload is one untyped object as decoded from a backend response.
// Every absent or oddly typed field is defaulted by the Normalize
// functions in this file and nowhere else.
type Payload map[string]interface{}

// Get returns the first of names present in p. Each name is tried exactly
// first, then case-insensitively with underscores ignored, so "accountId",
// "AccountID" and "account_id" are the same field.
func (p Payload) Get(names ...string) (interface{}, bool) {
	for _, name := range names {
		if v, ok := p[name]; ok && v != nil {
			return v, true
		}
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, name := range names {
		want := foldKey(name)
		for _, k := range keys {
			if v := p[k]; v != nil && foldKey(k) == want {
				return v, true
			}
		}
	}
	return nil, false
}

// String returns the first of names as a trimmed string. Numbers and
// booleans are formatted; objects yield their "id" field.
func (p Payload) String(names ...string) string {
	v, ok := p.Get(names...)
	if !ok {
		return ""
	}
	return scalarString(v)
}

// Object returns the first of names that holds a nested object.
func (p Payload) Object(names ...string) (Payload, bool) {
	v, ok := p.Get(names...)
	if !ok {
		return nil, false
	}
	switch m := v.(type) {
	case map[string]interface{}:
		return Payload(m), true
	case Payload:
		return m, true
	}
	return nil, false
}

func foldKey(k string) string {
	return strings.ToLower(strings.ReplaceAll(k, "_", ""))
}

func scalarString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case map[string]interface{}:
		return Payload(x).String("id", "_id")
	case Payload:
		return x.String("id", "_id")
	}
	return ""
}

func lowerOr(s, def string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return def
	}
	return s
}

// parseTime accepts RFC3339 strings, YYYY-MM-DD dates and unix seconds or
// milliseconds. Anything else is the zero time.
func parseTime(v interface{}, ok bool) time.Time {
	if !ok {
		return time.Time{}
	}
	switch x := v.(type) {
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, x); err == nil {
				return t.UTC()
			}
		}
	case float64:
		sec := int64(x)
		if sec > 1e12 {
			return time.UnixMilli(sec).UTC()
		}
		return time.Unix(sec, 0).UTC()
	}
	return time.Time{}
}

// NormalizeOrder maps an order payload into an Order.
//
// Defaults: status "pending", platform "unknown", number falls back to the
// ID. The store may arrive as a nested object or as a bare storeId; a
// customer may be a name string or an object with name and email.
func NormalizeOrder(p Payload) (Order, error) {
	id := p.String("id", "_id", "orderId")
	if id == "" {
		return Order{}, fmt.Errorf("%w: order has no id", ErrInvalidPayload)
	}

	o := Order{
		ID:        id,
		Number:    p.String("orderNumber", "number"),
		Customer:  p.String("customerName"),
		Email:     p.String("customerEmail", "email"),
		Product:   p.String("productName", "product", "title"),
		Status:    lowerOr(p.String("status", "orderStatus"), StatusPending),
		Platform:  lowerOr(p.String("platform", "channel"), PlatformUnknown),
		AccountID: p.String("accountId", "account"),
		CreatedAt: parseTime(p.Get("createdAt", "created", "orderDate")),
	}
	if o.Number == "" {
		o.Number = o.ID
	}

	if c, ok := p.Object("customer"); ok {
		if o.Customer == "" {
			o.Customer = c.String("name", "fullName")
		}
		if o.Email == "" {
			o.Email = c.String("email")
		}
	} else if o.Customer == "" {
		o.Customer = p.String("customer")
	}

	if s, ok := p.Object("store"); ok {
		ref := StoreRef{
			ID:        s.String("id", "_id", "storeId"),
			Name:      s.String("name", "storeName"),
			AccountID: s.String("accountId", "account"),
		}
		if ref.ID != "" {
			o.Store = &ref
		}
	} else if sid := p.String("storeId", "store"); sid != "" {
		o.Store = &StoreRef{ID: sid, Name: p.String("storeName")}
	}

	return o, nil
}

// NormalizeStore maps a store payload into a Store.
func NormalizeStore(p Payload) (Store, error) {
	id := p.String("id", "_id", "storeId")
	if id == "" {
		return Store{}, fmt.Errorf("%w: store has no id", ErrInvalidPayload)
	}
	s := Store{
		ID:        id,
		Name:      p.String("name", "storeName"),
		Platform:  lowerOr(p.String("platform", "channel"), PlatformUnknown),
		AccountID: p.String("accountId", "account"),
		Status:    lowerOr(p.String("status"), "active"),
	}
	if s.Name == "" {
		s.Name = s.ID
	}
	return s, nil
}

// NormalizeRole maps a role payload into a Role. Permissions may be a list
// of strings, a list of objects carrying id or name, or a list of objects
// under "rolePermissions". Duplicates are dropped, order is kept.
func NormalizeRole(p Payload) (Role, error) {
	name := p.String("name", "roleName", "title")
	id := p.String("id", "_id", "roleId")
	if id == "" && name == "" {
		return Role{}, fmt.Errorf("%w: role has neither id nor name", ErrInvalidPayload)
	}
	if id == "" {
		id = name
	}
	if name == "" {
		name = id
	}

	r := Role{ID: id, Name: name, Permissions: []string{}}
	seen := make(map[string]bool)
	raw, _ := p.Get("permissions", "permissionIds", "rolePermissions")
	list, _ := raw.([]interface{})
	for _, item := range list {
		var perm string
		switch x := item.(type) {
		case string:
			perm = strings.TrimSpace(x)
		case map[string]interface{}:
			obj := Payload(x)
			perm = obj.String("id", "permissionId", "name", "key")
			if nested, ok := obj.Object("permission"); ok && perm == "" {
				perm = nested.String("id", "name", "key")
			}
		}
		if perm == "" || seen[perm] {
			continue
		}
		seen[perm] = true
		r.Permissions = append(r.Permissions, perm)
	}
	r.UpdatedAt = parseTime(p.Get("updatedAt"))
	return r, nil
}

// NormalizeAll applies fn to every payload. The first failure is reported
// with its position.
func NormalizeAll[T any](payloads []Payload, fn func(Payload) (T, error)) ([]T, error) {
	out := make([]T, 0, len(payloads))
	for i, p := range payloads {
		v, err := fn(p)
		if err != nil {
			return nil, fmt.Errorf("payload %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
