package data

import (
	"context"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	clickEventsTable = "click_events"
	invitationsTable = "invitations"
	widgetsTable     = "widgets"
)

var (
	// ClickEventsColumns holds the columns for the "click_events" table.
	ClickEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true, Size: 36},
		{Name: "widget_id", Type: field.TypeString, Size: 64},
		{Name: "domain", Type: field.TypeString, Size: 255},
		{Name: "client_address", Type: field.TypeString, Size: 64},
		{Name: "country", Type: field.TypeString, Nullable: true, Size: 128},
		{Name: "ambassador_id", Type: field.TypeString, Nullable: true, Size: 64},
		{Name: "ambassador_name", Type: field.TypeString, Nullable: true, Size: 255},
		{Name: "question1_answer", Type: field.TypeString, Nullable: true, Size: 2147483647},
		{Name: "question2_answer", Type: field.TypeString, Nullable: true, Size: 2147483647},
		{Name: "clicked_at", Type: field.TypeTime},
		{Name: "created_at", Type: field.TypeTime},
	}
	// ClickEventsTable holds the schema information for the "click_events" table.
	ClickEventsTable = &schema.Table{
		Name:       clickEventsTable,
		Columns:    ClickEventsColumns,
		PrimaryKey: []*schema.Column{ClickEventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "clickevent_widget_id_clicked_at",
				Columns: []*schema.Column{ClickEventsColumns[1], ClickEventsColumns[9]},
			},
			{
				Name:    "clickevent_widget_id_country",
				Columns: []*schema.Column{ClickEventsColumns[1], ClickEventsColumns[4]},
			},
		},
	}

	// InvitationsColumns holds the columns for the "invitations" table.
	InvitationsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true, Size: 36},
		{Name: "university_id", Type: field.TypeString, Size: 64},
		{Name: "university_name", Type: field.TypeString, Size: 255, Default: ""},
		{Name: "ambassador_name", Type: field.TypeString, Size: 255},
		{Name: "ambassador_email", Type: field.TypeString, Size: 255},
		{Name: "status", Type: field.TypeEnum, Enums: []string{"INVITED", "ACCEPTED", "DECLINED", "JOINED"}, Default: "INVITED"},
		{Name: "invited_at", Type: field.TypeTime},
		{Name: "responded_at", Type: field.TypeTime, Nullable: true},
	}
	// InvitationsTable holds the schema information for the "invitations" table.
	InvitationsTable = &schema.Table{
		Name:       invitationsTable,
		Columns:    InvitationsColumns,
		PrimaryKey: []*schema.Column{InvitationsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "invitation_university_id_status",
				Columns: []*schema.Column{InvitationsColumns[1], InvitationsColumns[5]},
			},
			{
				Name:    "invitation_ambassador_email_status",
				Columns: []*schema.Column{InvitationsColumns[4], InvitationsColumns[5]},
			},
		},
	}

	// WidgetsColumns holds the columns for the "widgets" table.
	WidgetsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true, Size: 64},
		{Name: "university_id", Type: field.TypeString, Nullable: true, Size: 64},
		{Name: "config", Type: field.TypeJSON},
		{Name: "is_verified", Type: field.TypeBool, Default: false},
		{Name: "last_verified_at", Type: field.TypeTime, Nullable: true},
		{Name: "last_verified_domain", Type: field.TypeString, Nullable: true, Size: 255},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// WidgetsTable holds the schema information for the "widgets" table.
	WidgetsTable = &schema.Table{
		Name:       widgetsTable,
		Columns:    WidgetsColumns,
		PrimaryKey: []*schema.Column{WidgetsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "widget_university_id",
				Columns: []*schema.Column{WidgetsColumns[1]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		ClickEventsTable,
		InvitationsTable,
		WidgetsTable,
	}
)

// Migrate creates or updates the tables. It is additive and safe to run on every start.
func Migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return err
	}
	return m.Create(ctx, Tables...)
}
