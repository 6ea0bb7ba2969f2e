package criteria

// Criterion is one scored dimension of call-handling quality. Key is the raw
// field name inside a call document's metrics map, Label the display name the
// BI layer expects.
type Criterion struct {
	Key   string
	Label string
}

const (
	CategoryFirstContact  = "первичка"
	CategoryRepeatContact = "вторичка"
	CategoryCallback      = "перезвон"
	CategoryConfirmation  = "подтверждение"
	CategoryOther         = "другое"
)

// FallbackCategory is used whenever a call carries a category the registry
// does not know. Reusing the first-contact table mirrors the behaviour the
// dashboards were built against; pending product-owner confirmation.
const FallbackCategory = CategoryFirstContact

// Reserved metrics keys that are never criteria, whatever the category.
var reservedKeys = map[string]struct{}{
	"call_type_classification": {},
	"overall_score":            {},
	"overall_score_max_10":     {},
}

// Registry maps a call category to its ordered criteria set. It is immutable
// after construction and safe for concurrent readers.
type Registry struct {
	byCategory map[string][]Criterion
}

// NewRegistry builds the fixed per-category criteria tables.
func NewRegistry() Registry {
	return Registry{byCategory: map[string][]Criterion{
		CategoryFirstContact: {
			{Key: "greeting", Label: "Приветствие"},
			{Key: "patient_name", Label: "Имя пациента"},
			{Key: "needs_identification", Label: "Выявление потребностей"},
			{Key: "service_presentation", Label: "Презентация услуги"},
			{Key: "clinic_presentation", Label: "Презентация клиники"},
			{Key: "doctor_presentation", Label: "Презентация врача"},
			{Key: "appointment", Label: "Запись"},
			{Key: "price", Label: "Цена"},
			{Key: "expertise", Label: "Экспертность"},
			{Key: "next_step", Label: "Следующий шаг"},
			{Key: "patient_booking", Label: "Запись на прием"},
			{Key: "emotional_tone", Label: "Эмоциональный окрас"},
			{Key: "speech", Label: "Речь"},
			{Key: "initiative", Label: "Инициатива"},
			{Key: "clinic_address", Label: "Адрес клиники"},
			{Key: "passport", Label: "Паспорт"},
			{Key: "objection_handling", Label: "Работа с возражениями"},
		},
		CategoryRepeatContact: {
			{Key: "greeting", Label: "Приветствие"},
			{Key: "patient_name", Label: "Имя пациента"},
			{Key: "question_clarification", Label: "Уточнение вопроса"},
			{Key: "expertise", Label: "Экспертность"},
			{Key: "next_step", Label: "Следующий шаг"},
			{Key: "patient_booking", Label: "Запись на прием"},
			{Key: "emotional_tone", Label: "Эмоциональный окрас"},
			{Key: "speech", Label: "Речь"},
			{Key: "initiative", Label: "Инициатива"},
			{Key: "objection_handling", Label: "Работа с возражениями"},
		},
		CategoryCallback: {
			{Key: "greeting", Label: "Приветствие"},
			{Key: "patient_name", Label: "Имя пациента"},
			{Key: "appeal", Label: "Апелляция"},
			{Key: "next_step", Label: "Следующий шаг"},
			{Key: "initiative", Label: "Инициатива"},
			{Key: "speech", Label: "Речь"},
			{Key: "clinic_address", Label: "Адрес клиники"},
			{Key: "passport", Label: "Паспорт"},
			{Key: "objection_handling", Label: "Работа с возражениями"},
		},
		CategoryConfirmation: {
			{Key: "greeting", Label: "Приветствие"},
			{Key: "patient_name", Label: "Имя пациента"},
			{Key: "appeal", Label: "Апелляция"},
			{Key: "next_step", Label: "Следующий шаг"},
			{Key: "initiative", Label: "Инициатива"},
			{Key: "speech", Label: "Речь"},
			{Key: "clinic_address", Label: "Адрес клиники"},
			{Key: "passport", Label: "Паспорт"},
			{Key: "objection_handling", Label: "Работа с возражениями"},
		},
	}}
}

// ForCategory returns the ordered criteria for a category. Unknown or empty
// categories fall back to the first-contact table, never to an empty set.
func (r Registry) ForCategory(category string) []Criterion {
	if set, ok := r.byCategory[category]; ok {
		return set
	}
	return r.byCategory[FallbackCategory]
}

// Known reports whether the category has its own criteria table.
func (r Registry) Known(category string) bool {
	_, ok := r.byCategory[category]
	return ok
}

// Reserved reports whether key is a service field of the metrics map rather
// than a criterion.
func Reserved(key string) bool {
	_, ok := reservedKeys[key]
	return ok
}
