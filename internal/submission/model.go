package submission

import "time"

// Payload is the JSON body posted by the browser form widget.
//
// The "website" field is a honeypot: it is rendered invisibly on the page and
// stays empty for legitimate submissions. Any value there marks the request as
// automated.
type Payload struct {
	Timestamp string `json:"timestamp"`
	Name      string `json:"name"`
	Farm      string `json:"farm"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	FarmType  string `json:"farm-type"`
	FarmSize  string `json:"farm-size"`
	Message   string `json:"message"`
	Website   string `json:"website"`
}

// Record is a sanitized submission appended to the submissions table.
// Rows are insert-only; nothing in this service updates or deletes them.
type Record struct {
	ID                 int64  `gorm:"column:id;primaryKey;autoIncrement"`
	SubmittedAtSeconds int64  `gorm:"column:submitted_at_s;not null"`
	ReceivedAtSeconds  int64  `gorm:"column:received_at_s;not null;index"`
	Name               string `gorm:"column:name;size:1000;not null"`
	Farm               string `gorm:"column:farm;size:1000;not null;default:''"`
	Email              string `gorm:"column:email;size:1000;not null"`
	Phone              string `gorm:"column:phone;size:1000;not null;default:''"`
	FarmType           string `gorm:"column:farm_type;size:1000;not null;default:''"`
	FarmSize           string `gorm:"column:farm_size;size:1000;not null;default:''"`
	Message            string `gorm:"column:message;type:text;not null"`
}

// TableName provides the explicit table binding for GORM.
func (Record) TableName() string {
	return "submissions"
}

// SuspiciousActivity is an append-only log entry written whenever the abuse
// check rejects a request. The raw payload is kept verbatim for review.
type SuspiciousActivity struct {
	ID                string `gorm:"column:id;primaryKey;size:190;not null"`
	ObservedAtSeconds int64  `gorm:"column:observed_at_s;not null;index"`
	Reason            string `gorm:"column:reason;size:190;not null"`
	PayloadJSON       string `gorm:"column:payload_json;type:text;not null"`
	CallerID          string `gorm:"column:caller_id;size:190;not null;default:''"`
}

// TableName provides the explicit table binding for GORM.
func (SuspiciousActivity) TableName() string {
	return "suspicious_activity"
}

// SubmittedAt parses the client-reported timestamp, falling back to the given
// instant when the field is absent or malformed.
func (p Payload) SubmittedAt(fallback time.Time) time.Time {
	if p.Timestamp == "" {
		return fallback
	}
	parsed, err := time.Parse(time.RFC3339, p.Timestamp)
	if err != nil {
		return fallback
	}
	return parsed
}
