package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Invitation holds the schema definition for an ambassador invitation.
type Invitation struct {
	ent.Schema
}

// Fields of the Invitation.
func (Invitation) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("university_id").
			NotEmpty(),
		field.String("university_name").
			Default("").
			Comment("Denormalized for the public invitation lookup"),
		field.String("ambassador_name").
			NotEmpty(),
		field.String("ambassador_email").
			NotEmpty().
			Comment("Lower-cased correlation key, not unique"),
		field.Enum("status").
			Values("INVITED", "ACCEPTED", "DECLINED", "JOINED").
			Default("INVITED"),
		field.Time("invited_at").
			Default(time.Now),
		field.Time("responded_at").
			Optional().
			Nillable(),
	}
}

// Indexes of the Invitation.
func (Invitation) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("university_id", "status"),
		index.Fields("ambassador_email", "status"),
	}
}
