package model

// All lists every table for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&PasswordResetToken{},
		&EmailVerificationToken{},
		&CaseRecord{},
		&Activity{},
		&ChatSession{},
		&ChatMessage{},
	}
}
