package model

// All lists the tables managed by AutoMigrate, parents first.
func All() []interface{} {
	return []interface{}{
		&Repository{},
		&Activity{},
		&ActivityStatus{},
		&ContentElement{},
	}
}
