package models

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Row is an untyped gateway row: a document whose field order is kept as
// it came back from the database.
type Row struct {
	Table string
	Doc   bson.D
}

// Kind implements Record. Rows of known tables report that table's kind.
func (r Row) Kind() Kind {
	if k, ok := ParseKind(r.Table); ok {
		return k
	}
	return Kind(r.Table)
}

// RecordID implements Record.
func (r Row) RecordID() string {
	for _, e := range r.Doc {
		if e.Key == "_id" {
			return Stringify(rowValue(e.Value))
		}
	}
	return ""
}

// Fields implements Record. "_id" is exposed as "id"; embedded documents
// become nested Fielders.
func (r Row) Fields() Fields {
	return docFields(r.Doc)
}

type docFielder bson.D

func (d docFielder) Fields() Fields { return docFields(bson.D(d)) }

func docFields(doc bson.D) Fields {
	out := make(Fields, 0, len(doc))
	for _, e := range doc {
		key := e.Key
		if key == "_id" {
			key = "id"
		}
		out = append(out, Field{Key: key, Value: rowValue(e.Value)})
	}
	return out
}

func rowValue(v any) any {
	switch x := v.(type) {
	case bson.D:
		return docFielder(x)
	case primitive.DateTime:
		return x.Time()
	case int32:
		return int64(x)
	}
	return v
}
