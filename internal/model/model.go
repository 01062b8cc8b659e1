package model

// Entry is a single logged work interval. Start and Stop use the canonical
// "2006-01-02 15:04:05" layout; WeekDay is the cached label of Start's weekday.
type Entry struct {
	ID      *int64 `json:"id,omitempty"`
	Start   string `json:"start"`
	Stop    string `json:"stop"`
	WeekDay string `json:"week_day"`
	Code    string `json:"code"`
	Memo    string `json:"memo"`
}

// Project is a reference record identified by its human-assigned code.
type Project struct {
	ID   *int64 `json:"id,omitempty"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// IDValue returns the entry id, or 0 if it has not been persisted.
func (e Entry) IDValue() int64 {
	if e.ID == nil {
		return 0
	}
	return *e.ID
}

// Int64 returns a pointer to v, for filling optional ids.
func Int64(v int64) *int64 {
	return &v
}
