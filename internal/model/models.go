package model

// All lists every table the service migrates.
func All() []interface{} {
	return []interface{}{
		&AnswerRecord{},
		&WrongQuestion{},
		&AiConfig{},
	}
}
