package models

// MigrateModels lists every table created by AutoMigrate.
var MigrateModels = []any{
	&Admin{},
	&City{},
	&Zone{},
	&Candidate{},
	&Vote{},
	&News{},
	&SiteMedia{},
}
