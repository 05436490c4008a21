package i18n

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "key" or "types").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "duplicate_key":
			return "フィールドキーが重複しています: " + data["keys"]
		case "unregistered_type":
			return "未登録のフィールド型です: " + data["types"]
		case "invalid_pattern":
			return "正規表現パターンが不正です: " + data["pattern"]
		case "invalid_field":
			return "フィールド定義が不正です: " + data["key"]
		case "override_depth":
			return "プロパティ上書きのパスが深すぎます: " + data["path"]
		case "override_mismatch":
			return "上書き対象のプロパティが存在しません: " + data["path"]
		}
	default: // "en"
		switch code {
		case "duplicate_key":
			return "Duplicate field keys found: " + data["keys"]
		case "unregistered_type":
			return "Unregistered field types: " + data["types"]
		case "invalid_pattern":
			return "Invalid regex pattern: " + data["pattern"]
		case "invalid_field":
			return "Invalid field definition: " + data["key"]
		case "override_depth":
			return "Property override path exceeds maximum depth: " + data["path"]
		case "override_mismatch":
			return "Overridden property not present in inputs: " + data["path"]
		}
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
