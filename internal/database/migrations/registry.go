package migrations

// AllMigrations returns all registered migrations in order.
// - 001: Schema creation using GORM AutoMigrate
func AllMigrations() []Migration {
	return []Migration{
		migration001Schema(),
	}
}
