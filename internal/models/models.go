package models

// All lists every persisted model, in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Account{},
		&Post{},
		&FeedEntry{},
		&Like{},
		&Comment{},
		&Follow{},
		&Bookmark{},
		&Notification{},
	}
}
