package services

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/1989Cristianq/modelodatos/internal/models"
)

// validateAccident checks a to-be-saved accident and its vehicles. It also
// normalizes the record: complement 2 defaults to the sentinel, a given
// neighborhood fills the traffic zone, and grace days fall back to
// defaultGrace. tx must be the transaction the write will run in.
func validateAccident(tx *gorm.DB, a *models.Accident, defaultGrace int) error {
	errs := fieldErrors{}

	if a.IPATNumber == "" {
		errs.add("ipat_number", "is required")
	}
	if a.IncidentDate.IsZero() {
		errs.add("incident_date", "is required")
	}
	if a.GraceDays == 0 {
		a.GraceDays = defaultGrace
	}
	if a.GraceDays < 1 {
		errs.add("grace_days", "must be at least 1")
	}
	if a.DeliveryDate != nil && !a.IncidentDate.IsZero() && models.DateOnly(*a.DeliveryDate).Before(models.DateOnly(a.IncidentDate)) {
		errs.add("delivery_date", "cannot be before the incident date")
	}

	if a.TotalVehicles < models.MinVehicles || a.TotalVehicles > models.MaxVehicles {
		errs.add("total_vehicles", "must be between %d and %d", models.MinVehicles, models.MaxVehicles)
	} else if len(a.Vehicles) > a.TotalVehicles {
		errs.add("vehicles", "%d vehicles given but total_vehicles is %d", len(a.Vehicles), a.TotalVehicles)
	}

	if !a.RoadType.Valid() {
		errs.add("road_type", "unknown value %q", a.RoadType)
	}
	if a.RoadNumber == "" {
		errs.add("road_number", "is required")
	}
	if a.Complement2 == "" {
		a.Complement2 = models.ComplementNone
	} else if !a.Complement2.Valid() {
		errs.add("complement2", "unknown value %q", a.Complement2)
	}

	if !a.Class.Valid() {
		errs.add("class", "unknown value %q", a.Class)
	} else if a.Class == models.ClassOtro && a.OtherClass == "" {
		errs.add("other_class", "is required when class is %s", models.ClassOtro)
	}
	if !a.RoadCategory.Valid() {
		errs.add("road_category", "unknown value %q", a.RoadCategory)
	}
	if a.CollisionWith != "" && !a.CollisionWith.Valid() {
		errs.add("collision_with", "unknown value %q", a.CollisionWith)
	}
	if a.CollisionWith == models.CollisionObjetoFijo && a.FixedObject == "" {
		errs.add("fixed_object", "is required when colliding with a fixed object")
	}
	if a.FixedObject != "" && !a.FixedObject.Valid() {
		errs.add("fixed_object", "unknown value %q", a.FixedObject)
	} else if a.FixedObject == models.FixedObjectOtro && a.OtherFixedObject == "" {
		errs.add("other_fixed_object", "is required when fixed_object is %s", models.FixedObjectOtro)
	}
	if a.ReferredTo != "" && !a.ReferredTo.Valid() {
		errs.add("referred_to", "unknown value %q", a.ReferredTo)
	}

	if err := checkReferences(tx, a, errs); err != nil {
		return err
	}

	seen := make(map[int]bool, len(a.Vehicles))
	for i := range a.Vehicles {
		v := &a.Vehicles[i]
		prefix := fmt.Sprintf("vehicles[%d].", i)
		if v.Sequence < 1 || v.Sequence > models.MaxVehicles {
			errs.add(prefix+"sequence", "must be between 1 and %d", models.MaxVehicles)
		} else if seen[v.Sequence] {
			errs.add(prefix+"sequence", "duplicate sequence %d", v.Sequence)
		}
		seen[v.Sequence] = true
		validateVehicle(v, prefix, errs)
	}

	return errs.err()
}

// validateVehicle checks one vehicle and its fatalities; field keys are
// prefixed with prefix.
func validateVehicle(v *models.VehicleInvolvement, prefix string, errs fieldErrors) {
	if !v.ServiceType.Valid() {
		errs.add(prefix+"service_type", "unknown value %q", v.ServiceType)
	}
	if !v.VehicleClass.Valid() {
		errs.add(prefix+"vehicle_class", "unknown value %q", v.VehicleClass)
	}
	if !v.Gender.Valid() {
		errs.add(prefix+"gender", "unknown value %q", v.Gender)
	}
	if !v.AgeRange.Valid() {
		errs.add(prefix+"age_range", "unknown value %q", v.AgeRange)
	}
	if !v.InjuredType.Valid() {
		errs.add(prefix+"injured_type", "unknown value %q", v.InjuredType)
	}
	if !v.FatalityType.Valid() {
		errs.add(prefix+"fatality_type", "unknown value %q", v.FatalityType)
	}

	if !v.DriverIntoxication.Valid() {
		errs.add(prefix+"driver_intoxication", "unknown value %q", v.DriverIntoxication)
	}
	switch {
	case v.DriverIntoxication == models.Yes && v.IntoxicationGrade == "":
		errs.add(prefix+"intoxication_grade", "is required when the driver was intoxicated")
	case v.DriverIntoxication != models.Yes && v.IntoxicationGrade != "":
		errs.add(prefix+"intoxication_grade", "only allowed when the driver was intoxicated")
	case v.IntoxicationGrade != "" && !v.IntoxicationGrade.Valid():
		errs.add(prefix+"intoxication_grade", "unknown value %q", v.IntoxicationGrade)
	}

	if v.InjuredCount < 0 {
		errs.add(prefix+"injured_count", "cannot be negative")
	}
	if v.FatalityCount < 0 {
		errs.add(prefix+"fatality_count", "cannot be negative")
	}
	for i, answer := range v.DiedLater() {
		if answer != "" && !answer.Valid() {
			errs.add(fmt.Sprintf("%sinjured%d_died_later", prefix, i+1), "unknown value %q", answer)
		}
	}

	if len(v.Fatalities) > v.FatalityCount {
		errs.add(prefix+"fatalities", "%d fatality records exceed fatality_count %d", len(v.Fatalities), v.FatalityCount)
	}
	for j := range v.Fatalities {
		f := &v.Fatalities[j]
		f.Sequence = j + 1
		if strings.TrimSpace(f.FullName) == "" {
			errs.add(fmt.Sprintf("%sfatalities[%d].full_name", prefix, j), "is required")
		}
		if strings.TrimSpace(f.Address) == "" {
			errs.add(fmt.Sprintf("%sfatalities[%d].address", prefix, j), "is required")
		}
	}
}

// checkReferences verifies the agent, the location rows and the hypothesis
// slots, adding failures to errs. Only database errors are returned.
func checkReferences(tx *gorm.DB, a *models.Accident, errs fieldErrors) error {
	if a.AgentID == 0 {
		errs.add("agent_id", "is required")
	} else if ok, err := exists(tx, &models.Agent{}, "agent_id", a.AgentID); err != nil {
		return err
	} else if !ok {
		errs.add("agent_id", "unknown agent %d", a.AgentID)
	}

	switch a.Area {
	case models.AreaUrban:
		if a.RuralSectorID != nil {
			errs.add("rural_sector_id", "not allowed for an urban accident")
		}
		if a.NeighborhoodID != nil {
			var n models.Neighborhood
			err := tx.Where("neighborhood_id = ?", *a.NeighborhoodID).Take(&n).Error
			switch {
			case isRecordNotFound(err):
				errs.add("neighborhood_id", "unknown neighborhood %d", *a.NeighborhoodID)
			case err != nil:
				return err
			case a.TrafficZoneID != nil && *a.TrafficZoneID != n.TrafficZoneID:
				errs.add("traffic_zone_id", "does not match the neighborhood's traffic zone")
			default:
				zone := n.TrafficZoneID
				a.TrafficZoneID = &zone
			}
		} else if a.TrafficZoneID != nil {
			if ok, err := exists(tx, &models.TrafficZone{}, "traffic_zone_id", *a.TrafficZoneID); err != nil {
				return err
			} else if !ok {
				errs.add("traffic_zone_id", "unknown traffic zone %d", *a.TrafficZoneID)
			}
		}
	case models.AreaRural:
		if a.NeighborhoodID != nil {
			errs.add("neighborhood_id", "not allowed for a rural accident")
		}
		if a.TrafficZoneID != nil {
			errs.add("traffic_zone_id", "not allowed for a rural accident")
		}
		if a.RuralSectorID != nil {
			if ok, err := exists(tx, &models.RuralSector{}, "rural_sector_id", *a.RuralSectorID); err != nil {
				return err
			} else if !ok {
				errs.add("rural_sector_id", "unknown rural sector %d", *a.RuralSectorID)
			}
		}
	default:
		errs.add("area", "unknown value %q", a.Area)
	}

	slots := a.HypothesisSlots()
	ids := make([]uint, 0, len(slots))
	for _, slot := range slots {
		if slot.ID != nil {
			ids = append(ids, *slot.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	var found []models.Hypothesis
	if err := tx.Where("hypothesis_id IN ?", ids).Find(&found).Error; err != nil {
		return err
	}
	categories := make(map[uint]models.HypothesisCategory, len(found))
	for _, h := range found {
		categories[h.HypothesisID] = h.Category
	}
	for _, slot := range slots {
		if slot.ID == nil {
			continue
		}
		cat, ok := categories[*slot.ID]
		switch {
		case !ok:
			errs.add(slot.Field, "unknown hypothesis %d", *slot.ID)
		case cat != slot.Category:
			errs.add(slot.Field, "hypothesis %d belongs to %s, expected %s", *slot.ID, cat, slot.Category)
		}
	}
	return nil
}

func exists(tx *gorm.DB, model any, column string, id uint) (bool, error) {
	var count int64
	err := tx.Model(model).Where(column+" = ?", id).Count(&count).Error
	return count > 0, err
}
