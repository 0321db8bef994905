// Package schema holds the column layout accepted by the upload endpoint.
package schema

// Column names, exactly as they must appear in the CSV header.
const (
	StudentID  = "Student_Id"
	FirstName  = "First_Name"
	LastName   = "Last_Name"
	Email      = "Email"
	UploadDate = "Upload_Date"
	TitleCode  = "Title_Code"
	Percentage = "Percentage"
)

// studentColumns is the header contract. Position matters: it drives both
// header checking and the order in which fields are validated.
var studentColumns = [...]string{
	StudentID,
	FirstName,
	LastName,
	Email,
	UploadDate,
	TitleCode,
	Percentage,
}

// Len is the number of columns every data row must carry.
const Len = len(studentColumns)

// Columns returns a copy of the expected header in order.
func Columns() []string {
	out := make([]string, Len)
	copy(out, studentColumns[:])
	return out
}

// At returns the column name at position i.
// The second return is false when i is outside the schema.
func At(i int) (string, bool) {
	if i < 0 || i >= Len {
		return "", false
	}
	return studentColumns[i], true
}
