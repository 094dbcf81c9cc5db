package models

// Choice is a single (value, label) pair of a closed vocabulary.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// choiceSet keeps the ordered vocabulary of a choice-constrained field.
type choiceSet[T ~string] struct {
	order  []T
	labels map[T]string
}

func newChoiceSet[T ~string](pairs ...Choice) choiceSet[T] {
	cs := choiceSet[T]{labels: make(map[T]string, len(pairs))}
	for _, p := range pairs {
		v := T(p.Value)
		cs.order = append(cs.order, v)
		cs.labels[v] = p.Label
	}
	return cs
}

func (cs choiceSet[T]) valid(v T) bool {
	_, ok := cs.labels[v]
	return ok
}

func (cs choiceSet[T]) label(v T) string {
	if l, ok := cs.labels[v]; ok {
		return l
	}
	return string(v)
}

func (cs choiceSet[T]) choices() []Choice {
	out := make([]Choice, 0, len(cs.order))
	for _, v := range cs.order {
		out = append(out, Choice{Value: string(v), Label: cs.labels[v]})
	}
	return out
}

// RoadType is the leading token of an address (via).
type RoadType string

const (
	RoadCalle       RoadType = "CALLE"
	RoadCarrera     RoadType = "CARRERA"
	RoadDiagonal    RoadType = "DIAGONAL"
	RoadCasa        RoadType = "CASA"
	RoadLote        RoadType = "LOTE"
	RoadManzana     RoadType = "MANZANA"
	RoadAvenida     RoadType = "AVENIDA"
	RoadVereda      RoadType = "VEREDA"
	RoadKilometro   RoadType = "KILOMETRO"
	RoadTransversal RoadType = "TRANSVERSAL"
	RoadVia         RoadType = "VÍA"
)

var roadTypes = newChoiceSet[RoadType](
	Choice{"CALLE", "Calle"},
	Choice{"CARRERA", "Carrera"},
	Choice{"DIAGONAL", "Diagonal"},
	Choice{"CASA", "Casa"},
	Choice{"LOTE", "Lote"},
	Choice{"MANZANA", "Manzana"},
	Choice{"AVENIDA", "Avenida"},
	Choice{"VEREDA", "Vereda"},
	Choice{"KILOMETRO", "Kilometro"},
	Choice{"TRANSVERSAL", "Transversal"},
	Choice{"VÍA", "Vía"},
)

func (v RoadType) Valid() bool   { return roadTypes.valid(v) }
func (v RoadType) Label() string { return roadTypes.label(v) }

// Complement2 is the second address complement. ComplementNone is the
// "no value" sentinel and never appears in a rendered address.
type Complement2 string

const (
	ComplementNone        Complement2 = "-"
	ComplementCarrera     Complement2 = "CARRERA"
	ComplementDiagonal    Complement2 = "DIAGONAL"
	ComplementCalle       Complement2 = "CALLE"
	ComplementTransversal Complement2 = "TRANSVERSAL"
	ComplementEntre       Complement2 = "ENTRE"
)

var complements = newChoiceSet[Complement2](
	Choice{"-", "-"},
	Choice{"CARRERA", "Carrera"},
	Choice{"DIAGONAL", "Diagonal"},
	Choice{"CALLE", "Calle"},
	Choice{"TRANSVERSAL", "Transversal"},
	Choice{"ENTRE", "Entre"},
)

func (v Complement2) Valid() bool   { return complements.valid(v) }
func (v Complement2) Label() string { return complements.label(v) }

// Area tells whether the accident happened in the urban or the rural zone.
type Area string

const (
	AreaUrban Area = "URBANA"
	AreaRural Area = "RURAL"
)

var areas = newChoiceSet[Area](
	Choice{"URBANA", "Urbana"},
	Choice{"RURAL", "Rural"},
)

func (v Area) Valid() bool   { return areas.valid(v) }
func (v Area) Label() string { return areas.label(v) }

type AccidentClass string

const (
	ClassAtropello   AccidentClass = "ATROPELLO"
	ClassCaida       AccidentClass = "CAIDA"
	ClassColision    AccidentClass = "COLISIÓN"
	ClassChoque      AccidentClass = "CHOQUE"
	ClassVolcamiento AccidentClass = "VOLCAMIENTO"
	ClassOtro        AccidentClass = "OTRO"
)

var accidentClasses = newChoiceSet[AccidentClass](
	Choice{"ATROPELLO", "Atropello"},
	Choice{"CAIDA", "Caída"},
	Choice{"COLISIÓN", "Colisión"},
	Choice{"CHOQUE", "Choque"},
	Choice{"VOLCAMIENTO", "Volcamiento"},
	Choice{"OTRO", "Otro"},
)

func (v AccidentClass) Valid() bool   { return accidentClasses.valid(v) }
func (v AccidentClass) Label() string { return accidentClasses.label(v) }

// RoadCategory is the administrative category of the road (tipo de vía).
type RoadCategory string

var roadCategories = newChoiceSet[RoadCategory](
	Choice{"RURAL", "Rural"},
	Choice{"URBANA", "Urbana"},
	Choice{"NACIONAL", "Nacional"},
	Choice{"DEPARTAMENTAL", "Departamental"},
	Choice{"MUNICIPAL", "Municipal"},
)

func (v RoadCategory) Valid() bool   { return roadCategories.valid(v) }
func (v RoadCategory) Label() string { return roadCategories.label(v) }

type CollisionType string

const (
	CollisionVehiculo   CollisionType = "VEHICULO"
	CollisionSemoviente CollisionType = "SEMOVIENTE"
	CollisionObjetoFijo CollisionType = "OBJETO FIJO"
)

var collisionTypes = newChoiceSet[CollisionType](
	Choice{"VEHICULO", "Vehículo"},
	Choice{"SEMOVIENTE", "Semoviente"},
	Choice{"OBJETO FIJO", "Objeto Fijo"},
)

func (v CollisionType) Valid() bool   { return collisionTypes.valid(v) }
func (v CollisionType) Label() string { return collisionTypes.label(v) }

type FixedObject string

const FixedObjectOtro FixedObject = "OTRO"

var fixedObjects = newChoiceSet[FixedObject](
	Choice{"MURO", "Muro"},
	Choice{"POSTE", "Poste"},
	Choice{"ARBOL", "Árbol"},
	Choice{"BARANDA", "Baranda"},
	Choice{"SEMAFORO", "Semáforo"},
	Choice{"INMUEBLE", "Inmueble"},
	Choice{"HIDRANTE", "Hidrante"},
	Choice{"VALLA", "Valla"},
	Choice{"SEÑAL", "Señal"},
	Choice{"TARIMA", "Tarima"},
	Choice{"CASETA", "Caseta"},
	Choice{"VEHICULO ESTACIONADO", "Vehículo Estacionado"},
	Choice{"OTRO", "Otro"},
)

func (v FixedObject) Valid() bool   { return fixedObjects.valid(v) }
func (v FixedObject) Label() string { return fixedObjects.label(v) }

// ReferralTarget is the authority the case was referred to.
type ReferralTarget string

var referralTargets = newChoiceSet[ReferralTarget](
	Choice{"FISCALIA", "Fiscalía"},
	Choice{"TRANSITO", "Tránsito"},
	Choice{"TRANSITO Y FISCALIA", "Tránsito y Fiscalía"},
	Choice{"OTRO", "Otro"},
)

func (v ReferralTarget) Valid() bool   { return referralTargets.valid(v) }
func (v ReferralTarget) Label() string { return referralTargets.label(v) }

type ServiceType string

var serviceTypes = newChoiceSet[ServiceType](
	Choice{"PARTICULAR", "Particular"},
	Choice{"PUBLICO", "Público"},
	Choice{"OFICIAL", "Oficial"},
	Choice{"DIPLOMATICO", "Diplomático"},
)

func (v ServiceType) Valid() bool   { return serviceTypes.valid(v) }
func (v ServiceType) Label() string { return serviceTypes.label(v) }

type VehicleClass string

var vehicleClasses = newChoiceSet[VehicleClass](
	Choice{"AUTOMOVIL", "Automóvil"},
	Choice{"BUS", "Bus"},
	Choice{"BUSETA", "Buseta"},
	Choice{"BICICLETA", "Bicicleta"},
	Choice{"CAMION", "Camión"},
	Choice{"CAMIONETA", "Camioneta"},
	Choice{"CAMPERO", "Campero"},
	Choice{"TRACTOCAMION", "Tractocamión - Camión Tractor"},
	Choice{"CUATRIMOTO", "Cuatrimoto"},
	Choice{"MICROBUS", "Microbus"},
	Choice{"MOTOCARRO", "Motocarro"},
	Choice{"MOTOCICLETA", "Motocicleta"},
	Choice{"MOTOTRICICLO", "Mototriciclo"},
	Choice{"VOLQUETA", "Volqueta"},
	Choice{"VEHICULO TRACCION ANIMAL", "Vehículo de Tracción Animal"},
	Choice{"FUGA DE VEHICULO", "Fuga de Vehículo"},
	Choice{"VEHICULO FANTASMA", "Vehículo Fantasma"},
)

func (v VehicleClass) Valid() bool   { return vehicleClasses.valid(v) }
func (v VehicleClass) Label() string { return vehicleClasses.label(v) }

type Gender string

var genders = newChoiceSet[Gender](
	Choice{"MASCULINO", "Masculino"},
	Choice{"FEMENINO", "Femenino"},
)

func (v Gender) Valid() bool   { return genders.valid(v) }
func (v Gender) Label() string { return genders.label(v) }

type AgeRange string

var ageRanges = newChoiceSet[AgeRange](
	Choice{"PRIMERA INFANCIA", "Primera Infancia (0-5 años)"},
	Choice{"INFANCIA", "Infancia (6-11 años)"},
	Choice{"ADOLESCENCIA", "Adolescencia (12-18 años)"},
	Choice{"JUVENTUD", "Juventud (14-26 años)"},
	Choice{"ADULTEZ", "Adultez (27-59 años)"},
	Choice{"PERSONA MAYOR", "Persona Mayor (60 años o más)"},
)

func (v AgeRange) Valid() bool   { return ageRanges.valid(v) }
func (v AgeRange) Label() string { return ageRanges.label(v) }

// InjuryType classifies the role of the injured or deceased person.
type InjuryType string

var injuryTypes = newChoiceSet[InjuryType](
	Choice{"PEATON", "Peatón"},
	Choice{"CONDUCTOR", "Conductor"},
	Choice{"ACOMPAÑANTE", "Acompañante"},
	Choice{"PASAJERO", "Pasajero"},
	Choice{"NO APLICA", "No Aplica"},
)

func (v InjuryType) Valid() bool   { return injuryTypes.valid(v) }
func (v InjuryType) Label() string { return injuryTypes.label(v) }

// YesNo is the three-valued SI / NO / NO APLICA answer.
type YesNo string

const (
	Yes           YesNo = "SI"
	No            YesNo = "NO"
	NotApplicable YesNo = "NO APLICA"
)

var yesNo = newChoiceSet[YesNo](
	Choice{"SI", "Sí"},
	Choice{"NO", "No"},
	Choice{"NO APLICA", "No Aplica"},
)

func (v YesNo) Valid() bool   { return yesNo.valid(v) }
func (v YesNo) Label() string { return yesNo.label(v) }

type IntoxicationGrade string

var intoxicationGrades = newChoiceSet[IntoxicationGrade](
	Choice{"GRADO 1", "Grado 1"},
	Choice{"GRADO 2", "Grado 2"},
	Choice{"GRADO 3", "Grado 3"},
)

func (v IntoxicationGrade) Valid() bool   { return intoxicationGrades.valid(v) }
func (v IntoxicationGrade) Label() string { return intoxicationGrades.label(v) }

// HypothesisCategory groups causal-factor codes.
type HypothesisCategory string

const (
	HypothesisDriver     HypothesisCategory = "CONDUCTOR"
	HypothesisVehicle    HypothesisCategory = "VEHICULO"
	HypothesisRoad       HypothesisCategory = "VIA"
	HypothesisPedestrian HypothesisCategory = "PEATON"
)

var hypothesisCategories = newChoiceSet[HypothesisCategory](
	Choice{"CONDUCTOR", "Conductor"},
	Choice{"VEHICULO", "Vehículo"},
	Choice{"VIA", "Vía"},
	Choice{"PEATON", "Peatón"},
)

func (v HypothesisCategory) Valid() bool   { return hypothesisCategories.valid(v) }
func (v HypothesisCategory) Label() string { return hypothesisCategories.label(v) }

// Role is the access level of a registered user.
type Role string

const (
	RoleAdmin      Role = "ADMINISTRADOR"
	RoleSupervisor Role = "SUPERVISOR"
	RoleFieldAgent Role = "USUARIO"
)

var roles = newChoiceSet[Role](
	Choice{"ADMINISTRADOR", "Administrador"},
	Choice{"SUPERVISOR", "Supervisor"},
	Choice{"USUARIO", "Agente de campo"},
)

func (v Role) Valid() bool   { return roles.valid(v) }
func (v Role) Label() string { return roles.label(v) }

// Vocabularies returns every choice-constrained field with its ordered values.
func Vocabularies() map[string][]Choice {
	return map[string][]Choice{
		"via":                 roadTypes.choices(),
		"complemento2":        complements.choices(),
		"area":                areas.choices(),
		"clase_accidente":     accidentClasses.choices(),
		"tipo_via":            roadCategories.choices(),
		"choque_con":          collisionTypes.choices(),
		"objeto_fijo":         fixedObjects.choices(),
		"remitido_a":          referralTargets.choices(),
		"tipo_servicio":       serviceTypes.choices(),
		"clase_vehiculo":      vehicleClasses.choices(),
		"genero":              genders.choices(),
		"rango_edad":          ageRanges.choices(),
		"heridos":             injuryTypes.choices(),
		"fallecidos":          injuryTypes.choices(),
		"embriaguez":          yesNo.choices(),
		"grado_embriaguez":    intoxicationGrades.choices(),
		"fallece_despues":     yesNo.choices(),
		"categoria_hipotesis": hypothesisCategories.choices(),
		"rol":                 roles.choices(),
	}
}
