package resolver

import (
	"strings"
	"testing"

	"github.com/blimu-dev/dartgen/pkg/ir"
	"github.com/blimu-dev/dartgen/pkg/openapi"
)

const specHeader = `
openapi: 3.0.3
info:
  title: Test API
  version: 1.0.0
paths: {}
components:
  schemas:
`

func resolveAll(t *testing.T, schemas string) *Resolver {
	t.Helper()
	doc, err := openapi.LoadFromData([]byte(specHeader + schemas))
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	r := New(doc)
	r.ResolveComponents()
	return r
}

func findModel(t *testing.T, r *Resolver, name string) ir.Model {
	t.Helper()
	for _, m := range r.Models() {
		if m.Name == name {
			return m
		}
	}
	t.Fatalf("model %s not found; have %v", name, modelNames(r))
	return ir.Model{}
}

func modelNames(r *Resolver) []string {
	var names []string
	for _, m := range r.Models() {
		names = append(names, m.Name)
	}
	return names
}

func findProp(t *testing.T, m ir.Model, name string) ir.Property {
	t.Helper()
	for _, p := range m.Properties {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("property %s not found on %s", name, m.Name)
	return ir.Property{}
}

func findAlias(t *testing.T, r *Resolver, name string) ir.Alias {
	t.Helper()
	for _, a := range r.Aliases() {
		if a.Name == name {
			return a
		}
	}
	t.Fatalf("alias %s not found", name)
	return ir.Alias{}
}

func TestScalarTypes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		schema string
		want   string
		kind   ir.TypeKind
	}{
		{"plain string", `{type: string}`, "String", ir.KindString},
		{"date", `{type: string, format: date}`, "DateTime", ir.KindDateTime},
		{"date-time", `{type: string, format: date-time}`, "DateTime", ir.KindDateTime},
		{"binary", `{type: string, format: binary}`, "Uint8List", ir.KindBytes},
		{"base64 byte", `{type: string, format: byte}`, "String", ir.KindString},
		{"integer", `{type: integer}`, "int", ir.KindInt},
		{"int64", `{type: integer, format: int64}`, "int", ir.KindInt},
		{"number", `{type: number}`, "double", ir.KindDouble},
		{"float", `{type: number, format: float}`, "double", ir.KindDouble},
		{"boolean", `{type: boolean}`, "bool", ir.KindBool},
		{"string array", `{type: array, items: {type: string}}`, "List<String>", ir.KindList},
		{"nested array", `{type: array, items: {type: array, items: {type: integer}}}`, "List<List<int>>", ir.KindList},
		{"untyped map", `{type: object}`, "Map<String, dynamic>", ir.KindMap},
		{"typed map", `{type: object, additionalProperties: {type: integer}}`, "Map<String, int>", ir.KindMap},
		{"no type", `{}`, "dynamic", ir.KindDynamic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := resolveAll(t, "    Wrapper:\n      type: object\n      properties:\n        field: "+tt.schema+"\n")
			p := findProp(t, findModel(t, r, "Wrapper"), "field")
			if p.Type.Name != tt.want {
				t.Errorf("type = %q, want %q", p.Type.Name, tt.want)
			}
			if p.Type.Kind != tt.kind {
				t.Errorf("kind = %q, want %q", p.Type.Kind, tt.kind)
			}
		})
	}
}

func TestModelProperties(t *testing.T) {
	t.Parallel()

	r := resolveAll(t, `
    User:
      type: object
      required: [id, created_at, nickname]
      properties:
        id:
          type: string
        created_at:
          type: string
          format: date-time
        display_name:
          type: string
          description: Shown in the UI.
        age:
          type: integer
        nickname:
          type: string
          nullable: true
`)
	user := findModel(t, r, "User")

	// Sorted source-key order.
	wantOrder := []string{"age", "createdAt", "displayName", "id", "nickname"}
	if len(user.Properties) != len(wantOrder) {
		t.Fatalf("got %d properties, want %d", len(user.Properties), len(wantOrder))
	}
	for i, want := range wantOrder {
		if user.Properties[i].Name != want {
			t.Errorf("property[%d] = %q, want %q", i, user.Properties[i].Name, want)
		}
	}

	created := findProp(t, user, "createdAt")
	if created.OriginalName != "created_at" {
		t.Errorf("OriginalName = %q, want created_at", created.OriginalName)
	}
	if !created.Required || created.Nullable {
		t.Errorf("createdAt required/nullable = %v/%v, want true/false", created.Required, created.Nullable)
	}
	if created.Type.Kind != ir.KindDateTime {
		t.Errorf("createdAt kind = %q, want datetime", created.Type.Kind)
	}

	age := findProp(t, user, "age")
	if age.Required || !age.Nullable {
		t.Errorf("optional property should be nullable: %+v", age)
	}
	if age.Type.Name != "int" {
		t.Errorf("age type = %q; optionality belongs to the property, not the type", age.Type.Name)
	}

	// Required but explicitly nullable is a distinct state.
	nick := findProp(t, user, "nickname")
	if !nick.Required || !nick.Nullable {
		t.Errorf("nickname required/nullable = %v/%v, want true/true", nick.Required, nick.Nullable)
	}
	if nick.Type.Name != "String?" {
		t.Errorf("nickname type = %q, want String?", nick.Type.Name)
	}

	if got := findProp(t, user, "displayName").Description; got != "Shown in the UI." {
		t.Errorf("description = %q", got)
	}
}

func TestInlinePromotion(t *testing.T) {
	t.Parallel()

	r := resolveAll(t, `
    User:
      type: object
      properties:
        address:
          type: object
          properties:
            street: {type: string}
            city: {type: string}
        tags:
          type: array
          items:
            type: object
            properties:
              label: {type: string}
        status:
          type: string
          enum: [active, suspended, deleted]
`)
	user := findModel(t, r, "User")

	addr := findProp(t, user, "address")
	if addr.Type.Name != "UserAddress" || addr.Type.Kind != ir.KindModel {
		t.Errorf("address type = %q (%s), want promoted UserAddress model", addr.Type.Name, addr.Type.Kind)
	}
	promoted := findModel(t, r, "UserAddress")
	if len(promoted.Properties) != 2 {
		t.Errorf("UserAddress has %d properties, want 2", len(promoted.Properties))
	}

	tags := findProp(t, user, "tags")
	if tags.Type.Name != "List<UserTagsItem>" {
		t.Errorf("tags type = %q, want List<UserTagsItem>", tags.Type.Name)
	}
	findModel(t, r, "UserTagsItem")

	status := findProp(t, user, "status")
	if status.Type.Name != "UserStatus" || status.Type.Kind != ir.KindEnum {
		t.Errorf("status type = %q (%s), want promoted UserStatus enum", status.Type.Name, status.Type.Kind)
	}
	var found bool
	for _, e := range r.Enums() {
		if e.Name == "UserStatus" {
			found = true
			if len(e.Values) != 3 || e.Values[0].Name != "active" || e.Values[0].Value != "active" {
				t.Errorf("UserStatus values = %+v", e.Values)
			}
		}
	}
	if !found {
		t.Fatal("UserStatus enum not promoted")
	}

	// Imports point at the promoted types.
	if !containsString(user.Imports, "UserAddress") || !containsString(user.Imports, "UserTagsItem") {
		t.Errorf("User imports = %v", user.Imports)
	}
}

func TestCycleTolerance(t *testing.T) {
	t.Parallel()

	r := resolveAll(t, `
    Employee:
      type: object
      properties:
        name: {type: string}
        manager:
          $ref: '#/components/schemas/Employee'
        team:
          type: array
          items:
            $ref: '#/components/schemas/Employee'
    Author:
      type: object
      properties:
        books:
          type: array
          items:
            $ref: '#/components/schemas/Book'
    Book:
      type: object
      properties:
        author:
          $ref: '#/components/schemas/Author'
`)

	emp := findModel(t, r, "Employee")
	if got := findProp(t, emp, "manager").Type.Name; got != "Employee" {
		t.Errorf("self reference = %q, want Employee", got)
	}
	if got := findProp(t, emp, "team").Type.Name; got != "List<Employee>" {
		t.Errorf("self list reference = %q, want List<Employee>", got)
	}

	author := findModel(t, r, "Author")
	book := findModel(t, r, "Book")
	if got := findProp(t, author, "books").Type.Name; got != "List<Book>" {
		t.Errorf("Author.books = %q", got)
	}
	if got := findProp(t, book, "author").Type.Name; got != "Author" {
		t.Errorf("Book.author = %q", got)
	}
}

func TestAliases(t *testing.T) {
	t.Parallel()

	r := resolveAll(t, `
    UserId:
      type: string
      description: Opaque user identifier.
    IdList:
      type: array
      items:
        $ref: '#/components/schemas/UserId'
    Metadata:
      type: object
      additionalProperties:
        type: string
    FreeForm:
      type: object
      additionalProperties: true
`)

	userID := findAlias(t, r, "UserId")
	if userID.Type.Name != "String" || userID.Type.Kind != ir.KindString {
		t.Errorf("UserId = %q (%s)", userID.Type.Name, userID.Type.Kind)
	}
	if userID.Description != "Opaque user identifier." {
		t.Errorf("UserId description = %q", userID.Description)
	}

	idList := findAlias(t, r, "IdList")
	if idList.Type.Name != "List<UserId>" || idList.Type.Kind != ir.KindList {
		t.Errorf("IdList = %q (%s)", idList.Type.Name, idList.Type.Kind)
	}
	if idList.Type.Elem == nil || idList.Type.Elem.Kind != ir.KindString {
		t.Error("IdList element should resolve to the alias's underlying string kind")
	}

	meta := findAlias(t, r, "Metadata")
	if meta.Type.Name != "Map<String, String>" {
		t.Errorf("Metadata = %q", meta.Type.Name)
	}
	free := findAlias(t, r, "FreeForm")
	if free.Type.Name != "Map<String, dynamic>" {
		t.Errorf("FreeForm = %q", free.Type.Name)
	}
}

func TestEnumWithNullValueAndCollisions(t *testing.T) {
	t.Parallel()

	r := resolveAll(t, `
    Status:
      type: string
      enum: [active, null, in-progress, in_progress]
    Task:
      type: object
      required: [status]
      properties:
        status:
          $ref: '#/components/schemas/Status'
`)

	var status ir.Enum
	for _, e := range r.Enums() {
		if e.Name == "Status" {
			status = e
		}
	}
	if status.Name == "" {
		t.Fatal("Status enum not built")
	}
	// null is not a member; colliding identifiers get suffixed.
	wantNames := []string{"active", "inProgress", "inProgress2"}
	if len(status.Values) != len(wantNames) {
		t.Fatalf("values = %+v", status.Values)
	}
	for i, want := range wantNames {
		if status.Values[i].Name != want {
			t.Errorf("value[%d] = %q, want %q", i, status.Values[i].Name, want)
		}
	}

	// The null member makes references nullable.
	prop := findProp(t, findModel(t, r, "Task"), "status")
	if prop.Type.Name != "Status?" || !prop.Type.Nullable {
		t.Errorf("reference to nullable enum = %q, want Status?", prop.Type.Name)
	}
}

func TestResolveRef(t *testing.T) {
	t.Parallel()

	r := resolveAll(t, `
    Pet:
      type: object
      properties:
        name: {type: string}
`)

	if _, ok := r.ResolveRef("#/components/schemas/Pet"); !ok {
		t.Error("existing schema not resolved")
	}
	if _, ok := r.ResolveRef("#/components/schemas/Missing"); ok {
		t.Error("missing schema resolved")
	}
	if _, ok := r.ResolveRef("external.yaml#/components/schemas/Pet"); ok {
		t.Error("external reference resolved")
	}
	if _, ok := r.ResolveRef("#/paths/~1pets"); ok {
		t.Error("non-schema pointer resolved")
	}
	if _, ok := r.ResolveRef("#/components/parameters/Whatever"); ok {
		t.Error("non-schema component resolved")
	}
}

func TestPointerUnescaping(t *testing.T) {
	t.Parallel()

	name, ok := refSchemaName("#/components/schemas/a~1b~0c")
	if !ok || name != "a/b~c" {
		t.Errorf("unescaped = %q, %v", name, ok)
	}
}

func TestComponentNameCollision(t *testing.T) {
	t.Parallel()

	r := resolveAll(t, `
    user_profile:
      type: object
      properties:
        a: {type: string}
    UserProfile:
      type: object
      properties:
        b: {type: string}
`)
	// Both normalize to UserProfile; the first in sorted order wins and
	// the collision is noted.
	if got := len(r.Models()); got != 1 {
		t.Fatalf("got %d models, want 1", got)
	}
	var noted bool
	for _, n := range r.Notes() {
		if strings.Contains(n, "normalize to the same name") {
			noted = true
		}
	}
	if !noted {
		t.Errorf("collision not noted: %v", r.Notes())
	}
}

func TestDollarKeysAndReservedWords(t *testing.T) {
	t.Parallel()

	r := resolveAll(t, `
    Update:
      type: object
      properties:
        $set:
          type: object
          additionalProperties: true
        $group_id:
          type: string
        class:
          type: string
        in:
          type: string
`)
	update := findModel(t, r, "Update")

	set := findProp(t, update, "$set")
	if set.OriginalName != "$set" {
		t.Errorf("$set OriginalName = %q", set.OriginalName)
	}
	if got := findProp(t, update, "$groupId").OriginalName; got != "$group_id" {
		t.Errorf("$groupId OriginalName = %q", got)
	}
	if got := findProp(t, update, "class_").OriginalName; got != "class" {
		t.Errorf("class_ OriginalName = %q", got)
	}
	findProp(t, update, "in_")
}
