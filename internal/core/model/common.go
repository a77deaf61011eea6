package model

// Dataset column names
const (
	ColumnEntityID          = "virus_id"
	ColumnMinutesSinceFirst = "minutes_since_first"
	ColumnMedia             = "media"
	ColumnTime              = "time"
	ColumnDay               = "day"
	ColumnReach             = "num_rep"
	ColumnTitle             = "title"
	ColumnImage             = "virus_image"
)

// RequiredColumns lists every column a tabular dataset must carry.
var RequiredColumns = []string{
	ColumnEntityID,
	ColumnMinutesSinceFirst,
	ColumnMedia,
	ColumnTime,
	ColumnDay,
	ColumnReach,
	ColumnTitle,
	ColumnImage,
}

// Panel field names
const (
	FieldTitle = "title"
	FieldDay   = "day"
	FieldTime  = "time"
)
