package engine

import (
	"fmt"

	"github.com/dirdb/dirdb/entity"
	"github.com/dirdb/dirdb/jsonval"
	"github.com/invopop/jsonschema"
)

// Operation describes one engine method for generic front ends (CLI,
// REST, tool-calling layers). Args is the JSON schema of the arguments
// object Invoke expects. Sensitive marks destructive operations; the
// engine itself never asks for confirmation, callers decide.
type Operation struct {
	Name        string
	Description string
	Sensitive   bool
	Args        *jsonschema.Schema
	Invoke      func(e *Engine, args *jsonval.Value) (*jsonval.Value, error)
}

// Argument shapes, reflected into schemas. The json tags define the wire
// names Invoke reads back out of the args object.

type tableArgs struct {
	Table string `json:"table" jsonschema:"description=Table name"`
}

type createTableArgs struct {
	Table string   `json:"table" jsonschema:"description=Table name"`
	Keys  []string `json:"keys,omitempty" jsonschema:"description=Descriptive key fields"`
}

type recordArgs struct {
	Table string `json:"table" jsonschema:"description=Table name"`
	ID    string `json:"id" jsonschema:"description=Record id"`
}

type insertArgs struct {
	Table string         `json:"table" jsonschema:"description=Table name"`
	ID    string         `json:"id" jsonschema:"description=Record id"`
	Data  map[string]any `json:"data" jsonschema:"description=Record fields"`
}

type updateArgs struct {
	Table   string         `json:"table" jsonschema:"description=Table name"`
	ID      string         `json:"id" jsonschema:"description=Record id"`
	Updates map[string]any `json:"updates" jsonschema:"description=Fields to merge into the record"`
}

type filterArgs struct {
	Table string `json:"table" jsonschema:"description=Table name"`
	Field string `json:"field" jsonschema:"description=Dot-path field"`
	Value any    `json:"value" jsonschema:"description=Comparison value"`
	Op    string `json:"op,omitempty" jsonschema:"description=Operator: eq ne gt gte lt lte contains,default=eq"`
}

type projectArgs struct {
	Table  string   `json:"table" jsonschema:"description=Table name"`
	Fields []string `json:"fields" jsonschema:"description=Dot-path fields to keep"`
}

type groupByArgs struct {
	Table        string            `json:"table" jsonschema:"description=Table name"`
	Field        string            `json:"field" jsonschema:"description=Field to group on"`
	Aggregations map[string]string `json:"aggregations,omitempty" jsonschema:"description=field to aggregate mapped to one of: sum avg min max count"`
}

type sortArgs struct {
	Table     string `json:"table" jsonschema:"description=Table name"`
	Field     string `json:"field" jsonschema:"description=Field to sort on"`
	Ascending *bool  `json:"ascending,omitempty" jsonschema:"description=Sort direction,default=true"`
	Limit     int    `json:"limit,omitempty" jsonschema:"description=Max results,0 means all"`
}

type joinArgs struct {
	LeftTable   string `json:"left_table" jsonschema:"description=Left table name"`
	RightTable  string `json:"right_table" jsonschema:"description=Right table name"`
	LeftField   string `json:"left_field" jsonschema:"description=Join field on the left side"`
	RightField  string `json:"right_field" jsonschema:"description=Join field on the right side"`
	LeftPrefix  string `json:"left_prefix,omitempty" jsonschema:"description=Prefix for left-side keys in each row"`
	RightPrefix string `json:"right_prefix,omitempty" jsonschema:"description=Prefix for right-side keys in each row"`
	Left        bool   `json:"left,omitempty" jsonschema:"description=Keep unmatched left rows"`
}

type fileArgs struct {
	Table string `json:"table" jsonschema:"description=Table name"`
	Path  string `json:"path" jsonschema:"description=File path"`
}

type exportArgs struct {
	Table  string `json:"table" jsonschema:"description=Table name"`
	Path   string `json:"path" jsonschema:"description=File path"`
	Indent int    `json:"indent,omitempty" jsonschema:"description=Spaces per level,default=2"`
}

type noArgs struct{}

func reflectArgs(v any) *jsonschema.Schema {
	r := jsonschema.Reflector{Anonymous: true, DoNotReference: true}
	return r.Reflect(v)
}

// Operations returns the full operation table, one entry per façade
// method. The table is rebuilt on each call; callers cache it.
func Operations() []Operation {
	return []Operation{
		{
			Name:        "create_table",
			Description: "Create a table, optionally recording descriptive key fields.",
			Args:        reflectArgs(&createTableArgs{}),
			Invoke: func(e *Engine, args *jsonval.Value) (*jsonval.Value, error) {
				keys, err := argStrings(args, "keys")
				if err != nil {
					return nil, err
				}
				table, err := argString(args, "table")
				if err != nil {
					return nil, err
				}
				if err := e.CreateTable(table, keys...); err != nil {
					return nil, err
				}
				return okResult(), nil
			},
		},
		{
			Name:        "drop_table",
			Description: "Remove a table and every record in it.",
			Sensitive:   true,
			Args:        reflectArgs(&tableArgs{}),
			Invoke: func(e *Engine, args *jsonval.Value) (*jsonval.Value, error) {
				table, err := argString(args, "table")
				if err != nil {
					return nil, err
				}
				if err := e.DropTable(table); err != nil {
					return nil, err
				}
				return okResult(), nil
			},
		},
		{
			Name:        "list_tables",
			Description: "List the tables in the database.",
			Args:        reflectArgs(&noArgs{}),
			Invoke: func(e *Engine, _ *jsonval.Value) (*jsonval.Value, error) {
				names, err := e.ListTables()
				if err != nil {
					return nil, err
				}
				out := jsonval.Array()
				for _, n := range names {
					out.Append(jsonval.String(n))
				}
				return out, nil
			},
		},
		{
			Name:        "insert",
			Description: "Write a record, overwriting any record with the same id. The table is created on first use.",
			Args:        reflectArgs(&insertArgs{}),
			Invoke: func(e *Engine, args *jsonval.Value) (*jsonval.Value, error) {
				table, err := argString(args, "table")
				if err != nil {
					return nil, err
				}
				id, err := argString(args, "id")
				if err != nil {
					return nil, err
				}
				data := args.Get("data")
				if data.IsNull() {
					data = jsonval.Object()
				}
				if err := e.Insert(table, id, data); err != nil {
					return nil, err
				}
				return okResult(), nil
			},
		},
		{
			Name:        "find_by_id",
			Description: "Load one record by id. Returns null when the record does not exist.",
			Args:        reflectArgs(&recordArgs{}),
			Invoke: func(e *Engine, args *jsonval.Value) (*jsonval.Value, error) {
				table, id, err := argRecord(args)
				if err != nil {
					return nil, err
				}
				rec, err := e.FindByID(table, id)
				if err != nil {
					return nil, err
				}
				if rec == nil {
					return jsonval.Null(), nil
				}
				return recordResult(rec), nil
			},
		},
		{
			Name:        "find_all",
			Description: "Load every record in a table, sorted by id.",
			Args:        reflectArgs(&tableArgs{}),
			Invoke: func(e *Engine, args *jsonval.Value) (*jsonval.Value, error) {
				table, err := argString(args, "table")
				if err != nil {
					return nil, err
				}
				recs, err := e.FindAll(table)
				if err != nil {
					return nil, err
				}
				return recordsResult(recs), nil
			},
		},
		{
			Name:        "update",
			Description: "Merge fields into an existing record. Reports found=false when the record does not exist.",
			Sensitive:   true,
			Args:        reflectArgs(&updateArgs{}),
			Invoke: func(e *Engine, args *jsonval.Value) (*jsonval.Value, error) {
				table, id, err := argRecord(args)
				if err != nil {
					return nil, err
				}
				updates := args.Get("updates")
				if updates.IsNull() {
					updates = jsonval.Object()
				}
				found, err := e.Update(table, id, updates)
				if err != nil {
					return nil, err
				}
				return foundResult(found), nil
			},
		},
		{
			Name:        "delete",
			Description: "Remove a record. Reports found=false when the record does not exist.",
			Sensitive:   true,
			Args:        reflectArgs(&recordArgs{}),
			Invoke: func(e *Engine, args *jsonval.Value) (*jsonval.Value, error) {
				table, id, err := argRecord(args)
				if err != nil {
					return nil, err
				}
				found, err := e.Delete(table, id)
				if err != nil {
					return nil, err
				}
				return foundResult(found), nil
			},
		},
		{
			Name:        "filter",
			Description: "Return the records whose field satisfies the operator against the value.",
			Args:        reflectArgs(&filterArgs{}),
			Invoke: func(e *Engine, args *jsonval.Value) (*jsonval.Value, error) {
				table, err := argString(args, "table")
				if err != nil {
					return nil, err
				}
				field, err := argString(args, "field")
				if err != nil {
					return nil, err
				}
				opName := "eq"
				if v := args.Get("op"); !v.IsNull() {
					opName = v.StrVal()
				}
				op, err := ParseOp(opName)
				if err != nil {
					return nil, err
				}
				recs, err := e.Filter(table, field, args.Get("value"), op)
				if err != nil {
					return nil, err
				}
				return recordsResult(recs), nil
			},
		},
		{
			Name:        "project",
			Description: "Return one object per record holding only the named dot-path fields.",
			Args:        reflectArgs(&projectArgs{}),
			Invoke: func(e *Engine, args *jsonval.Value) (*jsonval.Value, error) {
				table, err := argString(args, "table")
				if err != nil {
					return nil, err
				}
				fields, err := argStrings(args, "fields")
				if err != nil {
					return nil, err
				}
				rows, err := e.Project(table, fields)
				if err != nil {
					return nil, err
				}
				return rowsResult(rows), nil
			},
		},
		{
			Name:        "group_by",
			Description: "Partition a table by a field, keyed by the compact JSON encoding of the group value. Each group reports its count plus any requested aggregations.",
			Args:        reflectArgs(&groupByArgs{}),
			Invoke: func(e *Engine, args *jsonval.Value) (*jsonval.Value, error) {
				table, err := argString(args, "table")
				if err != nil {
					return nil, err
				}
				field, err := argString(args, "field")
				if err != nil {
					return nil, err
				}
				aggs := map[string]string{}
				if v := args.Get("aggregations"); !v.IsNull() {
					for _, k := range v.Keys() {
						aggs[k] = v.Get(k).StrVal()
					}
				}
				return e.GroupBy(table, field, aggs)
			},
		},
		{
			Name:        "sort",
			Description: "Return a table's records ordered by a field, optionally limited.",
			Args:        reflectArgs(&sortArgs{}),
			Invoke: func(e *Engine, args *jsonval.Value) (*jsonval.Value, error) {
				table, err := argString(args, "table")
				if err != nil {
					return nil, err
				}
				field, err := argString(args, "field")
				if err != nil {
					return nil, err
				}
				ascending := true
				if v := args.Get("ascending"); !v.IsNull() {
					ascending = v.BoolVal()
				}
				limit := 0
				if v := args.Get("limit"); !v.IsNull() {
					limit = int(v.IntVal())
				}
				recs, err := e.Sort(table, field, ascending, limit)
				if err != nil {
					return nil, err
				}
				return recordsResult(recs), nil
			},
		},
		{
			Name:        "join",
			Description: "Join two tables on a field pair. Rows are flat objects carrying both sides' fields.",
			Args:        reflectArgs(&joinArgs{}),
			Invoke: func(e *Engine, args *jsonval.Value) (*jsonval.Value, error) {
				lt, err := argString(args, "left_table")
				if err != nil {
					return nil, err
				}
				rt, err := argString(args, "right_table")
				if err != nil {
					return nil, err
				}
				lf, err := argString(args, "left_field")
				if err != nil {
					return nil, err
				}
				rf, err := argString(args, "right_field")
				if err != nil {
					return nil, err
				}
				opts := JoinOptions{
					LeftPrefix:  args.Get("left_prefix").StrVal(),
					RightPrefix: args.Get("right_prefix").StrVal(),
				}
				var rows []*jsonval.Value
				if args.Get("left").BoolVal() {
					rows, err = e.LeftJoin(lt, rt, lf, rf, opts)
				} else {
					rows, err = e.Join(lt, rt, lf, rf, opts)
				}
				if err != nil {
					return nil, err
				}
				return rowsResult(rows), nil
			},
		},
		{
			Name:        "import_json",
			Description: "Load a JSON file (object or array of objects) into a table.",
			Args:        reflectArgs(&fileArgs{}),
			Invoke: func(e *Engine, args *jsonval.Value) (*jsonval.Value, error) {
				table, err := argString(args, "table")
				if err != nil {
					return nil, err
				}
				path, err := argString(args, "path")
				if err != nil {
					return nil, err
				}
				n, err := e.ImportJSONFile(table, path)
				if err != nil {
					return nil, err
				}
				out := jsonval.Object()
				out.Set("imported", jsonval.Int(int64(n)))
				return out, nil
			},
		},
		{
			Name:        "export_json",
			Description: "Write a whole table to a JSON file as an array.",
			Args:        reflectArgs(&exportArgs{}),
			Invoke: func(e *Engine, args *jsonval.Value) (*jsonval.Value, error) {
				table, err := argString(args, "table")
				if err != nil {
					return nil, err
				}
				path, err := argString(args, "path")
				if err != nil {
					return nil, err
				}
				indent := 2
				if v := args.Get("indent"); !v.IsNull() {
					indent = int(v.IntVal())
				}
				if err := e.ExportJSONFile(table, path, indent); err != nil {
					return nil, err
				}
				return okResult(), nil
			},
		},
	}
}

// FindOperation looks an operation up by name.
func FindOperation(name string) (Operation, bool) {
	for _, op := range Operations() {
		if op.Name == name {
			return op, true
		}
	}
	return Operation{}, false
}

func argString(args *jsonval.Value, key string) (string, error) {
	v := args.Get(key)
	if v.IsNull() || v.Kind() != jsonval.KindString {
		return "", fmt.Errorf("argument %q must be a string", key)
	}
	return v.StrVal(), nil
}

func argRecord(args *jsonval.Value) (table, id string, err error) {
	if table, err = argString(args, "table"); err != nil {
		return "", "", err
	}
	if id, err = argString(args, "id"); err != nil {
		return "", "", err
	}
	return table, id, nil
}

func argStrings(args *jsonval.Value, key string) ([]string, error) {
	v := args.Get(key)
	if v.IsNull() {
		return nil, nil
	}
	if v.Kind() != jsonval.KindArray {
		return nil, fmt.Errorf("argument %q must be an array of strings", key)
	}
	out := make([]string, 0, v.Len())
	for _, item := range v.Items() {
		if item.Kind() != jsonval.KindString {
			return nil, fmt.Errorf("argument %q must be an array of strings", key)
		}
		out = append(out, item.StrVal())
	}
	return out, nil
}

func okResult() *jsonval.Value {
	out := jsonval.Object()
	out.Set("ok", jsonval.Bool(true))
	return out
}

func foundResult(found bool) *jsonval.Value {
	out := jsonval.Object()
	out.Set("found", jsonval.Bool(found))
	return out
}

func recordResult(rec *entity.Record) *jsonval.Value {
	data := rec.Data.Clone()
	if !data.Has("id") {
		data.Set("id", jsonval.String(rec.ID))
	}
	return data
}

func recordsResult(recs []*entity.Record) *jsonval.Value {
	out := jsonval.Array()
	for _, rec := range recs {
		out.Append(recordResult(rec))
	}
	return out
}

func rowsResult(rows []*jsonval.Value) *jsonval.Value {
	out := jsonval.Array()
	out.Append(rows...)
	return out
}
