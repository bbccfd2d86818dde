package query

import (
	"testing"

	"github.com/dirdb/dirdb/entity"
	"github.com/dirdb/dirdb/jsonval"
)

func orders(t *testing.T) []*entity.Record {
	t.Helper()
	return []*entity.Record{
		rec(t, "o1", `{"order_id":1,"customer_id":10,"total":50}`),
		rec(t, "o2", `{"order_id":2,"customer_id":20,"total":75}`),
		rec(t, "o3", `{"order_id":3,"customer_id":10,"total":20}`),
		rec(t, "o4", `{"order_id":4,"customer_id":99,"total":10}`),
	}
}

func customers(t *testing.T) []*entity.Record {
	t.Helper()
	return []*entity.Record{
		rec(t, "c1", `{"id":10,"name":"Alice"}`),
		rec(t, "c2", `{"id":20,"name":"Bob"}`),
		rec(t, "c3", `{"id":30,"name":"Charlie"}`),
	}
}

func TestInnerJoin(t *testing.T) {
	rows := InnerJoin(orders(t), customers(t), "customer_id", "id", JoinOptions{})

	// Every matching (left, right) pair produces exactly one row.
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	names := map[int64]string{}
	for _, row := range rows {
		names[row.Get("order_id").IntVal()] = row.Get("name").StrVal()
	}
	want := map[int64]string{1: "Alice", 2: "Bob", 3: "Alice"}
	for id, name := range want {
		if names[id] != name {
			t.Errorf("order %d joined to %q, want %q", id, names[id], name)
		}
	}
}

func TestInnerJoinNumericKinds(t *testing.T) {
	left := []*entity.Record{rec(t, "l", `{"k":1}`)}
	right := []*entity.Record{rec(t, "r", `{"k":1.0,"tag":"float side"}`)}
	rows := InnerJoin(left, right, "k", "k", JoinOptions{})
	if len(rows) != 1 {
		t.Fatalf("integer 1 should match 1.0, got %d rows", len(rows))
	}
}

func TestLeftJoin(t *testing.T) {
	left := orders(t)
	rows := LeftJoin(left, customers(t), "customer_id", "id", JoinOptions{})

	// At least one row per left record, unmatched lefts included once.
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	var unmatched int
	for _, row := range rows {
		if !row.Has("name") {
			unmatched++
			if row.Get("order_id").IntVal() != 4 {
				t.Errorf("wrong unmatched row: %s", row)
			}
		}
	}
	if unmatched != 1 {
		t.Errorf("expected 1 unmatched left row, got %d", unmatched)
	}
}

func TestJoinPrefixes(t *testing.T) {
	opts := JoinOptions{LeftPrefix: "order.", RightPrefix: "customer."}
	rows := InnerJoin(orders(t)[:1], customers(t), "customer_id", "id", opts)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if !row.Has("order.total") || !row.Has("customer.name") {
		t.Errorf("prefixed keys missing: %s", row)
	}
	if row.Has("total") || row.Has("name") {
		t.Errorf("unprefixed keys leaked: %s", row)
	}
}

func TestJoinNullKeysNeverMatch(t *testing.T) {
	left := []*entity.Record{
		rec(t, "l1", `{"k":null}`),
		rec(t, "l2", `{"other":1}`),
	}
	right := []*entity.Record{
		rec(t, "r1", `{"k":null}`),
	}
	if rows := InnerJoin(left, right, "k", "k", JoinOptions{}); len(rows) != 0 {
		t.Errorf("null and missing keys matched: %d rows", len(rows))
	}
	// Left join still keeps the left rows.
	if rows := LeftJoin(left, right, "k", "k", JoinOptions{}); len(rows) != 2 {
		t.Errorf("left join dropped unmatched rows: %d", len(rows))
	}
}

func TestJoinDoesNotShareValues(t *testing.T) {
	left := orders(t)[:1]
	right := customers(t)
	rows := InnerJoin(left, right, "customer_id", "id", JoinOptions{})
	rows[0].Set("name", jsonval.String("Mallory"))
	if right[0].Data.Get("name").StrVal() != "Alice" {
		t.Error("join row shares storage with the source record")
	}
}
