package dto

// PetForm is the body of the pet create and edit forms
type PetForm struct {
	Nickname  string `form:"apelido" label:"Apelido" validate:"required,max=100"`
	Breed     string `form:"raca" label:"Raça" validate:"max=100"`
	BirthDate string `form:"data_nascimento" label:"Data de nascimento"`
	OwnerID   int64  `form:"aluno_id" label:"Dono" validate:"required,gt=0"`
}

// PetExport is the JSON shape of a pet in exports
type PetExport struct {
	ID             int64   `json:"id"`
	Apelido        string  `json:"apelido"`
	Raca           *string `json:"raca"`
	DataNascimento *string `json:"data_nascimento"`
	AlunoID        int64   `json:"aluno_id"`
	CreatedAt      *string `json:"created_at"`
	UpdatedAt      *string `json:"updated_at"`
}
