package dto

// StudentForm is the body of the student create and edit forms.
// Age stays a string so an empty field means "not informed".
type StudentForm struct {
	EnrollmentCode string `form:"matricula" label:"Matrícula" validate:"required,max=20"`
	Name           string `form:"nome" label:"Nome" validate:"required,max=200"`
	Course         string `form:"curso" label:"Curso" validate:"max=100"`
	Age            string `form:"idade" label:"Idade"`
	Sex            string `form:"sexo" label:"Sexo" validate:"omitempty,oneof=M F"`
}

// PhotoUpload is an uploaded student photo
type PhotoUpload struct {
	Filename string
	Data     []byte
}

// StudentExport is the JSON shape of a student in exports
type StudentExport struct {
	ID           int64   `json:"id"`
	Matricula    string  `json:"matricula"`
	Nome         string  `json:"nome"`
	Curso        *string `json:"curso"`
	Idade        *int    `json:"idade"`
	Sexo         *string `json:"sexo"`
	FotoFilename *string `json:"foto_filename"`
	CreatedAt    *string `json:"created_at"`
	UpdatedAt    *string `json:"updated_at"`
}
