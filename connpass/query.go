package connpass

import "strconv"

// QueryPair is one encoded query parameter.
type QueryPair struct {
	Name  string
	Value string
}

// wireValuer is implemented by enumerations that travel as query values.
type wireValuer interface {
	WireValue() string
}

// queryParam maps one field of a query struct to its wire name. values
// returns nil when the field is absent.
type queryParam[Q any] struct {
	field  string
	wire   string
	values func(*Q) []string
}

// querySchema is the ordered parameter table of a query type. It is both
// the encoder and the field/wire name table.
type querySchema[Q any] []queryParam[Q]

func (s querySchema[Q]) encode(q *Q) []QueryPair {
	if q == nil {
		return nil
	}
	var pairs []QueryPair
	for _, p := range s {
		for _, v := range p.values(q) {
			pairs = append(pairs, QueryPair{Name: p.wire, Value: v})
		}
	}
	return pairs
}

// wireName returns the parameter name for a Go field name.
func (s querySchema[Q]) wireName(field string) (string, bool) {
	for _, p := range s {
		if p.field == field {
			return p.wire, true
		}
	}
	return "", false
}

// fieldName returns the Go field name for a parameter name.
func (s querySchema[Q]) fieldName(wire string) (string, bool) {
	for _, p := range s {
		if p.wire == wire {
			return p.field, true
		}
	}
	return "", false
}

func intParam[Q any](field, wire string, get func(*Q) *int) queryParam[Q] {
	return queryParam[Q]{field: field, wire: wire, values: func(q *Q) []string {
		if v := get(q); v != nil {
			return []string{strconv.Itoa(*v)}
		}
		return nil
	}}
}

func intsParam[Q any](field, wire string, get func(*Q) []int) queryParam[Q] {
	return queryParam[Q]{field: field, wire: wire, values: func(q *Q) []string {
		vs := get(q)
		if len(vs) == 0 {
			return nil
		}
		out := make([]string, len(vs))
		for i, v := range vs {
			out[i] = strconv.Itoa(v)
		}
		return out
	}}
}

func stringsParam[Q any](field, wire string, get func(*Q) []string) queryParam[Q] {
	return queryParam[Q]{field: field, wire: wire, values: get}
}

func enumParam[Q any, E wireValuer](field, wire string, get func(*Q) *E) queryParam[Q] {
	return queryParam[Q]{field: field, wire: wire, values: func(q *Q) []string {
		if v := get(q); v != nil {
			return []string{(*v).WireValue()}
		}
		return nil
	}}
}

func enumsParam[Q any, E wireValuer](field, wire string, get func(*Q) []E) queryParam[Q] {
	return queryParam[Q]{field: field, wire: wire, values: func(q *Q) []string {
		vs := get(q)
		if len(vs) == 0 {
			return nil
		}
		out := make([]string, len(vs))
		for i, v := range vs {
			out[i] = v.WireValue()
		}
		return out
	}}
}

// MaxCount is the largest page size the API accepts for Count.
const MaxCount = 100

// EventsQuery filters the events resource. Nil pointers and empty slices
// are omitted from the request; list fields repeat their parameter once
// per element. A nil or zero EventsQuery requests the unfiltered listing.
type EventsQuery struct {
	Start         *int
	Count         *int
	EventID       []int
	Keyword       []string
	KeywordOr     []string
	YM            []string
	YMD           []string
	Nickname      []string
	OwnerNickname []string
	GroupID       []int
	Subdomain     []string
	Prefecture    []Prefecture
	Order         *EventOrder
}

var eventsQuerySchema = querySchema[EventsQuery]{
	intParam("Start", "start", func(q *EventsQuery) *int { return q.Start }),
	intParam("Count", "count", func(q *EventsQuery) *int { return q.Count }),
	intsParam("EventID", "event_id", func(q *EventsQuery) []int { return q.EventID }),
	stringsParam("Keyword", "keyword", func(q *EventsQuery) []string { return q.Keyword }),
	stringsParam("KeywordOr", "keyword_or", func(q *EventsQuery) []string { return q.KeywordOr }),
	stringsParam("YM", "ym", func(q *EventsQuery) []string { return q.YM }),
	stringsParam("YMD", "ymd", func(q *EventsQuery) []string { return q.YMD }),
	stringsParam("Nickname", "nickname", func(q *EventsQuery) []string { return q.Nickname }),
	stringsParam("OwnerNickname", "owner_nickname", func(q *EventsQuery) []string { return q.OwnerNickname }),
	intsParam("GroupID", "group_id", func(q *EventsQuery) []int { return q.GroupID }),
	stringsParam("Subdomain", "subdomain", func(q *EventsQuery) []string { return q.Subdomain }),
	enumsParam("Prefecture", "prefecture", func(q *EventsQuery) []Prefecture { return q.Prefecture }),
	enumParam("Order", "order", func(q *EventsQuery) *EventOrder { return q.Order }),
}

// Encode returns the query parameters for q in a fixed parameter order.
func (q *EventsQuery) Encode() []QueryPair { return eventsQuerySchema.encode(q) }

// GroupsQuery filters the groups resource.
type GroupsQuery struct {
	Start     *int
	Count     *int
	Subdomain []string
}

var groupsQuerySchema = querySchema[GroupsQuery]{
	intParam("Start", "start", func(q *GroupsQuery) *int { return q.Start }),
	intParam("Count", "count", func(q *GroupsQuery) *int { return q.Count }),
	stringsParam("Subdomain", "subdomain", func(q *GroupsQuery) []string { return q.Subdomain }),
}

// Encode returns the query parameters for q.
func (q *GroupsQuery) Encode() []QueryPair { return groupsQuerySchema.encode(q) }

// UsersQuery filters the users resource.
type UsersQuery struct {
	Start    *int
	Count    *int
	Nickname []string
}

var usersQuerySchema = querySchema[UsersQuery]{
	intParam("Start", "start", func(q *UsersQuery) *int { return q.Start }),
	intParam("Count", "count", func(q *UsersQuery) *int { return q.Count }),
	stringsParam("Nickname", "nickname", func(q *UsersQuery) []string { return q.Nickname }),
}

// Encode returns the query parameters for q.
func (q *UsersQuery) Encode() []QueryPair { return usersQuerySchema.encode(q) }

// PageQuery pages through the per-user resources.
type PageQuery struct {
	Start *int
	Count *int
}

var pageQuerySchema = querySchema[PageQuery]{
	intParam("Start", "start", func(q *PageQuery) *int { return q.Start }),
	intParam("Count", "count", func(q *PageQuery) *int { return q.Count }),
}

// Encode returns the query parameters for q.
func (q *PageQuery) Encode() []QueryPair { return pageQuerySchema.encode(q) }

// Int returns a pointer to v, for the optional scalar fields of a query.
func Int(v int) *int { return &v }

// Order returns a pointer to o, for EventsQuery.Order.
func Order(o EventOrder) *EventOrder { return &o }
