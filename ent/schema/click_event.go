package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ClickEvent holds the schema definition for a chat-icon click.
type ClickEvent struct {
	ent.Schema
}

// Fields of the ClickEvent.
func (ClickEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable().
			Comment("UUID of the click"),
		field.String("widget_id").
			NotEmpty().
			Comment("Widget that reported the click"),
		field.String("domain").
			Comment("Hostname of the page embedding the widget"),
		field.String("client_address").
			Comment("Visitor network address as observed by the server"),
		field.String("country").
			Optional().
			Nillable().
			Comment("Resolved asynchronously after the click is stored"),
		field.String("ambassador_id").
			Optional().
			Nillable(),
		field.String("ambassador_name").
			Optional().
			Nillable(),
		field.Text("question1_answer").
			Optional().
			Nillable(),
		field.Text("question2_answer").
			Optional().
			Nillable(),
		field.Time("clicked_at").
			Comment("Client reported click time"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Indexes of the ClickEvent.
func (ClickEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("widget_id", "clicked_at"),
		index.Fields("widget_id", "country"),
	}
}
