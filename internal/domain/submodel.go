package domain

// Submodel is the 911 trim selected on the form.
type Submodel string

const (
	SubmodelBase      Submodel = "Base"
	SubmodelCarrera   Submodel = "Carrera"
	SubmodelCarreraS  Submodel = "Carrera S"
	SubmodelCarrera4S Submodel = "Carrera 4S"
	SubmodelTarga     Submodel = "Targa"
	SubmodelTurbo     Submodel = "Turbo"
	SubmodelTurboS    Submodel = "Turbo S"
	SubmodelGT3       Submodel = "GT3"
	SubmodelGT3RS     Submodel = "GT3 RS"
	SubmodelGT2RS     Submodel = "GT2 RS"
	SubmodelOther     Submodel = "Other"
)

// Submodels lists the form choices in display order.
var Submodels = []Submodel{
	SubmodelBase,
	SubmodelCarrera,
	SubmodelCarreraS,
	SubmodelCarrera4S,
	SubmodelTarga,
	SubmodelTurbo,
	SubmodelTurboS,
	SubmodelGT3,
	SubmodelGT3RS,
	SubmodelGT2RS,
	SubmodelOther,
}

// String returns the string representation of Submodel.
func (s Submodel) String() string {
	return string(s)
}

// IsValid checks if the submodel is one of the form choices.
func (s Submodel) IsValid() bool {
	for _, v := range Submodels {
		if v == s {
			return true
		}
	}
	return false
}
