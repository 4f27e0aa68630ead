package question

// AllCategories is the quiz category selector meaning "draw from every question".
// No stored category uses id 0.
const AllCategories int64 = 0

// Question is a stored trivia record as delivered to clients.
type Question struct {
	ID         int64  `json:"id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Difficulty int    `json:"difficulty"`
	Category   int64  `json:"category"`
}

// Category labels a group of questions (e.g. "Science").
type Category struct {
	ID   int64  `json:"id" yaml:"id"`
	Type string `json:"type" yaml:"type"`
}

// CategoryMap maps category id to its display label.
type CategoryMap map[int64]string

// NewQuestion is the input for creating a question. Numeric fields are pointers
// so that an absent value can be told apart from zero.
type NewQuestion struct {
	Question   string
	Answer     string
	Difficulty *int
	Category   *int64
}

// Page is one page of a question listing plus the metadata each listing reports.
type Page struct {
	Questions       []Question
	TotalQuestions  int
	Categories      CategoryMap
	CurrentCategory string
}

// QuizRequest asks for the next quiz question. Nil fields mean the caller did not send them.
type QuizRequest struct {
	PreviousQuestions []int64
	Category          *int64
}

func categoryMap(categories []Category) CategoryMap {
	m := make(CategoryMap, len(categories))
	for _, c := range categories {
		m[c.ID] = c.Type
	}
	return m
}
