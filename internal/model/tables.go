package model

// Tables lists every relational table in migration order.
func Tables() []any {
	return []any{
		&User{},
		&Community{},
		&CommunityMember{},
		&Post{},
		&PostReaction{},
		&Comment{},
		&Follow{},
		&OutboxEvent{},
	}
}
