package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/smartcity/complaints-api/internal/core/ports"
)

func TestListFilter_CitizenScope(t *testing.T) {
	f := listFilter(ports.ListCasesFilter{ReporterID: "u1", Status: "pending"})

	if f["user_id"] != "u1" {
		t.Fatalf("expected user_id scope, got %v", f["user_id"])
	}
	if f["status"] != "pending" {
		t.Fatalf("expected status filter, got %v", f["status"])
	}
	if _, ok := f["assigned_to"]; ok {
		t.Fatal("citizen scope must not filter on assignee")
	}
}

func TestListFilter_EmptyAdminScopeMatchesNothing(t *testing.T) {
	f := listFilter(ports.ListCasesFilter{ReporterIDs: []string{}})

	in, ok := f["user_id"].(bson.M)
	if !ok {
		t.Fatalf("expected an $in clause, got %T", f["user_id"])
	}
	ids, ok := in["$in"].([]string)
	if !ok || ids == nil || len(ids) != 0 {
		t.Fatalf("expected an empty, non-nil $in list, got %#v", in["$in"])
	}
}

func TestListFilter_NoScopeMeansNoUserClause(t *testing.T) {
	f := listFilter(ports.ListCasesFilter{AssignedTo: "e1"})

	if _, ok := f["user_id"]; ok {
		t.Fatal("employee scope must not restrict reporters")
	}
	if f["assigned_to"] != "e1" {
		t.Fatalf("expected assigned_to filter, got %v", f["assigned_to"])
	}
}

func TestListFilter_SearchIsEscaped(t *testing.T) {
	f := listFilter(ports.ListCasesFilter{Search: "pipe (main)"})

	or, ok := f["$or"].(bson.A)
	if !ok || len(or) != 3 {
		t.Fatalf("expected three search clauses, got %#v", f["$or"])
	}
	title := or[0].(bson.M)["title"].(primitive.Regex)
	if title.Pattern != `pipe \(main\)` || title.Options != "i" {
		t.Fatalf("unexpected pattern: %+v", title)
	}
}
