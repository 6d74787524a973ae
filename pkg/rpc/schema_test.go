package rpc

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morezero/typed-rpc/pkg/schema"
)

const schemaTestPrefix = "rpc:schema_test"

type GetUserInput struct {
	ID int `json:"id"`
}

type User struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Employee struct {
	Name    string    `json:"name"`
	Manager *Employee `json:"manager"`
	Reports []Employee
}

func usersApp(t *testing.T) *App {
	t.Helper()
	return newTestApp(t, []*Router{
		NewRouter("users").Query("getUser", func(in Args[GetUserInput]) User {
			return User{ID: in.Value.ID}
		}),
	})
}

func TestSchema_EndToEndDocument(t *testing.T) {
	data, err := usersApp(t).SchemaJSON()
	require.NoError(t, err, schemaTestPrefix)

	assert.JSONEq(t, `{
		"rpcapi": "2.0.0",
		"info": {"name": "test-app", "version": "1.2.3", "description": "dispatcher tests"},
		"procedures": [{
			"id": 0,
			"type": "query",
			"path": "users",
			"name": "getUser",
			"params": {"variant": "struct", "name": "GetUserInput"},
			"result": {"variant": "struct", "name": "User"}
		}],
		"types": {
			"GetUserInput": {"name": "GetUserInput", "type": "struct", "fields": [
				{"name": "id", "rel": {"variant": "native", "type": "integer", "format": "isize"}}
			]},
			"User": {"name": "User", "type": "struct", "fields": [
				{"name": "id", "rel": {"variant": "native", "type": "integer", "format": "isize"}},
				{"name": "name", "rel": {"variant": "native", "type": "string", "format": "type"}}
			]}
		}
	}`, string(data), schemaTestPrefix)
}

func TestSchema_ByteIdenticalAcrossPasses(t *testing.T) {
	app := newTestApp(t, []*Router{
		NewRouter("org").
			Query("employee", func(Args[string]) (*Employee, error) { return nil, nil }).
			Route("users", func(r *Router) {
				r.Query("getUser", func(Args[GetUserInput]) User { return User{} })
			}),
		InfoRouter(),
	})

	first, err := app.SchemaJSON()
	require.NoError(t, err, schemaTestPrefix)
	for i := 0; i < 5; i++ {
		again, err := app.SchemaJSON()
		require.NoError(t, err, schemaTestPrefix)
		assert.Equal(t, first, again, schemaTestPrefix)
	}
}

func TestSchema_ConcurrentPassesAgree(t *testing.T) {
	app := usersApp(t)
	want, err := app.SchemaJSON()
	require.NoError(t, err, schemaTestPrefix)

	var wg sync.WaitGroup
	results := make([][]byte, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = app.SchemaJSON()
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		assert.Equal(t, want, got, schemaTestPrefix)
	}
}

func TestSchema_ChildrenBeforeLocals(t *testing.T) {
	app := newTestApp(t, []*Router{
		NewRouter("root").
			Query("a", noop).
			Route("child", func(r *Router) {
				r.Mutation("x", noop).Route("leaf", func(r *Router) {
					r.Query("y", noop)
				})
			}),
	})

	doc, err := app.Schema()
	require.NoError(t, err, schemaTestPrefix)

	type entry struct {
		id   int
		path string
		name string
		kind schema.ProcedureType
	}
	got := make([]entry, 0, len(doc.Procedures))
	for _, p := range doc.Procedures {
		got = append(got, entry{p.ID, p.Path, p.Name, p.Type})
	}
	assert.Equal(t, []entry{
		{2, "root/child/leaf", "y", schema.Query},
		{1, "root/child", "x", schema.Mutation},
		{0, "root", "a", schema.Query},
	}, got, schemaTestPrefix)
}

func TestSchema_ParamsAndResultShapes(t *testing.T) {
	app := newTestApp(t, []*Router{
		NewRouter("r").
			Query("noArgs", func() string { return "" }).
			Query("onlyError", func(Args[int]) error { return nil }).
			Query("optional", func(OptionalArgs[GetUserInput]) []User { return nil }).
			Query("provided", func(Provide[greeter], AppInfo) map[string]bool { return nil }),
	})

	doc, err := app.Schema()
	require.NoError(t, err, schemaTestPrefix)
	require.Len(t, doc.Procedures, 4, schemaTestPrefix)

	noArgs := doc.Procedures[0]
	assert.Nil(t, noArgs.Params, schemaTestPrefix)
	assert.Equal(t, schema.Native(schema.TypeString, schema.FormatType), noArgs.Result, schemaTestPrefix)

	onlyError := doc.Procedures[1]
	assert.Equal(t, schema.Native(schema.TypeInteger, schema.FormatIsize), onlyError.Params, schemaTestPrefix)
	assert.Nil(t, onlyError.Result, schemaTestPrefix)

	optional := doc.Procedures[2]
	assert.Equal(t, schema.NullableOf(schema.StructRef("GetUserInput")), optional.Params, schemaTestPrefix)
	assert.Equal(t, schema.ArrayOf(schema.StructRef("User")), optional.Result, schemaTestPrefix)

	provided := doc.Procedures[3]
	assert.Nil(t, provided.Params, schemaTestPrefix)
	assert.Equal(t, schema.MapOf(
		schema.Native(schema.TypeString, schema.FormatType),
		schema.Native(schema.TypeBoolean, schema.FormatType),
	), provided.Result, schemaTestPrefix)

	data, err := json.Marshal(noArgs)
	require.NoError(t, err, schemaTestPrefix)
	assert.NotContains(t, string(data), "params", schemaTestPrefix)
}

func TestSchema_SelfReferentialResult(t *testing.T) {
	app := newTestApp(t, []*Router{
		NewRouter("org").Query("employee", func() (*Employee, error) { return nil, nil }),
	})

	doc, err := app.Schema()
	require.NoError(t, err, schemaTestPrefix)

	require.Len(t, doc.Types, 1, schemaTestPrefix)
	emp := doc.Types["Employee"]
	require.NotNil(t, emp, schemaTestPrefix)
	assert.Equal(t, schema.NullableOf(schema.StructRef("Employee")), doc.Procedures[0].Result, schemaTestPrefix)
	require.Len(t, emp.Fields, 3, schemaTestPrefix)
	assert.Equal(t, "manager", emp.Fields[1].Name, schemaTestPrefix)
	assert.Equal(t, schema.NullableOf(schema.StructRef("Employee")), emp.Fields[1].Rel, schemaTestPrefix)
	assert.Equal(t, "Reports", emp.Fields[2].Name, schemaTestPrefix)
	assert.Equal(t, schema.ArrayOf(schema.StructRef("Employee")), emp.Fields[2].Rel, schemaTestPrefix)
}

func TestSchema_UnsupportedResult(t *testing.T) {
	app := newTestApp(t, []*Router{
		NewRouter("r").Query("stream", func() chan int { return nil }),
	})

	_, err := app.Schema()
	assert.ErrorIs(t, err, schema.ErrUnsupportedType, schemaTestPrefix)
	_, err = app.SchemaJSON()
	assert.Error(t, err, schemaTestPrefix)
}
