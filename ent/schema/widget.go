package schema

import (
	"encoding/json"
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Widget holds the schema definition for the widget directory.
type Widget struct {
	ent.Schema
}

// Fields of the Widget.
func (Widget) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("university_id").
			Optional().
			Nillable().
			Comment("Owner; empty for anonymous preview widgets"),
		field.JSON("config", json.RawMessage{}).
			Comment("Display configuration as submitted by the generator"),
		field.Bool("is_verified").
			Default(false),
		field.Time("last_verified_at").
			Optional().
			Nillable(),
		field.String("last_verified_domain").
			Optional().
			Nillable(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}

// Indexes of the Widget.
func (Widget) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("university_id"),
	}
}
