// Package fleet implements roster management: drivers, vehicles, and the
// assignments linking them. Assignment invariants (one open assignment
// per vehicle, one open primary assignment per driver) are checked here
// and backed by partial unique indexes in the store.
package fleet

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fleetops/backend/internal/domain/fleet"
	"github.com/fleetops/backend/internal/domain/shared"
	"github.com/fleetops/backend/internal/infrastructure/persistence"
	"github.com/fleetops/backend/internal/infrastructure/telemetry"
)

// RosterService manages drivers, vehicles, and their assignments
type RosterService struct {
	runner *persistence.Runner
}

// NewRosterService creates a new RosterService
func NewRosterService(runner *persistence.Runner) *RosterService {
	return &RosterService{runner: runner}
}

// CreateDriver registers a driver with the tenant's fleet
func (s *RosterService) CreateDriver(ctx context.Context, tenantID uuid.UUID, input CreateDriverInput) (*DriverDTO, error) {
	var dto *DriverDTO
	err := s.runner.Run(ctx, tenantID, "fleet.create_driver", func(ctx context.Context, scope *persistence.Scope) error {
		driver, err := fleet.NewDriver(tenantID, input.Name, input.LicenceNumber)
		if err != nil {
			return err
		}
		driver.Phone = input.Phone

		if err := scope.Drivers().Save(ctx, driver); err != nil {
			return err
		}
		dto = toDriverDTO(driver)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// GetDriver returns a driver by ID
func (s *RosterService) GetDriver(ctx context.Context, tenantID, driverID uuid.UUID) (*DriverDTO, error) {
	var dto *DriverDTO
	err := s.runner.Run(ctx, tenantID, "fleet.get_driver", func(ctx context.Context, scope *persistence.Scope) error {
		driver, err := scope.Drivers().FindByID(ctx, driverID)
		if err != nil {
			return err
		}
		dto = toDriverDTO(driver)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// ListDrivers lists the tenant's drivers
func (s *RosterService) ListDrivers(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]DriverDTO, error) {
	var dtos []DriverDTO
	err := s.runner.Run(ctx, tenantID, "fleet.list_drivers", func(ctx context.Context, scope *persistence.Scope) error {
		drivers, err := scope.Drivers().FindAll(ctx, filter)
		if err != nil {
			return err
		}
		dtos = make([]DriverDTO, 0, len(drivers))
		for i := range drivers {
			dtos = append(dtos, *toDriverDTO(&drivers[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dtos, nil
}

// DeactivateDriver marks a driver as no longer employed. Their open
// assignments are ended as of now in the same transaction.
func (s *RosterService) DeactivateDriver(ctx context.Context, tenantID, driverID uuid.UUID) error {
	return s.runner.Run(ctx, tenantID, "fleet.deactivate_driver", func(ctx context.Context, scope *persistence.Scope) error {
		driver, err := scope.Drivers().FindByID(ctx, driverID)
		if err != nil {
			return err
		}
		if err := driver.Deactivate(); err != nil {
			return err
		}

		assignments, err := scope.Assignments().FindByDriver(ctx, driverID)
		if err != nil {
			return err
		}
		now := time.Now()
		for i := range assignments {
			if !assignments[i].IsOpen() {
				continue
			}
			if err := assignments[i].End(now); err != nil {
				return err
			}
			if err := scope.Assignments().Save(ctx, &assignments[i]); err != nil {
				return err
			}
		}

		return scope.Drivers().Save(ctx, driver)
	}, zap.String("driver_id", driverID.String()))
}

// CreateVehicle registers a vehicle with the tenant's fleet
func (s *RosterService) CreateVehicle(ctx context.Context, tenantID uuid.UUID, input CreateVehicleInput) (*VehicleDTO, error) {
	var dto *VehicleDTO
	err := s.runner.Run(ctx, tenantID, "fleet.create_vehicle", func(ctx context.Context, scope *persistence.Scope) error {
		vehicle, err := fleet.NewVehicle(tenantID, input.Registration, input.PaymentConfig)
		if err != nil {
			return err
		}

		if err := scope.Vehicles().Save(ctx, vehicle); err != nil {
			return err
		}
		dto = toVehicleDTO(vehicle)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// GetVehicle returns a vehicle by ID
func (s *RosterService) GetVehicle(ctx context.Context, tenantID, vehicleID uuid.UUID) (*VehicleDTO, error) {
	var dto *VehicleDTO
	err := s.runner.Run(ctx, tenantID, "fleet.get_vehicle", func(ctx context.Context, scope *persistence.Scope) error {
		vehicle, err := scope.Vehicles().FindByID(ctx, vehicleID)
		if err != nil {
			return err
		}
		dto = toVehicleDTO(vehicle)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// UpdateVehiclePaymentConfig replaces how the vehicle's weekly target is
// derived. Already-materialized weekly targets keep their original amount;
// the new configuration applies from the next materialized week.
func (s *RosterService) UpdateVehiclePaymentConfig(ctx context.Context, tenantID, vehicleID uuid.UUID, cfg fleet.PaymentConfig) (*VehicleDTO, error) {
	var dto *VehicleDTO
	err := s.runner.Run(ctx, tenantID, "fleet.update_vehicle_payment_config", func(ctx context.Context, scope *persistence.Scope) error {
		vehicle, err := scope.Vehicles().FindByID(ctx, vehicleID)
		if err != nil {
			return err
		}
		if err := vehicle.UpdatePaymentConfig(cfg); err != nil {
			return err
		}
		if err := scope.Vehicles().Save(ctx, vehicle); err != nil {
			return err
		}
		dto = toVehicleDTO(vehicle)
		return nil
	}, zap.String("vehicle_id", vehicleID.String()))
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// AssignDriver opens an assignment between a driver and a vehicle. The
// vehicle must not already have an open assignment, and a primary
// assignment requires the driver to have no other open primary.
func (s *RosterService) AssignDriver(ctx context.Context, tenantID uuid.UUID, input AssignDriverInput) (*AssignmentDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "fleet", "assign_driver")
	defer span.End()
	telemetry.SetAttributes(span,
		"driver_id", input.DriverID,
		"vehicle_id", input.VehicleID,
	)

	var dto *AssignmentDTO
	err := s.runner.Run(ctx, tenantID, "fleet.assign_driver", func(ctx context.Context, scope *persistence.Scope) error {
		driver, err := scope.Drivers().FindByID(ctx, input.DriverID)
		if err != nil {
			return err
		}
		if !driver.IsActive() {
			return shared.NewConflictError("Cannot assign an inactive driver")
		}

		vehicle, err := scope.Vehicles().FindByID(ctx, input.VehicleID)
		if err != nil {
			return err
		}
		if vehicle.Status != fleet.VehicleStatusActive {
			return shared.NewConflictError("Cannot assign a vehicle that is not active")
		}

		if _, err := scope.Assignments().FindOpenByVehicle(ctx, vehicle.ID); err == nil {
			return shared.NewConflictError("Vehicle already has an open assignment")
		} else if !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		if input.IsPrimary {
			if _, err := scope.Assignments().FindOpenPrimaryByDriver(ctx, driver.ID); err == nil {
				return shared.NewConflictError("Driver already has an open primary assignment")
			} else if !errors.Is(err, shared.ErrNotFound) {
				return err
			}
		}

		assignment, err := fleet.NewAssignment(tenantID, driver.ID, vehicle.ID, input.StartDate, input.IsPrimary)
		if err != nil {
			return err
		}
		if err := scope.Assignments().Save(ctx, assignment); err != nil {
			return err
		}

		dto = toAssignmentDTO(assignment)
		return nil
	}, zap.String("driver_id", input.DriverID.String()), zap.String("vehicle_id", input.VehicleID.String()))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return dto, nil
}

// EndAssignment closes an open assignment as of endDate
func (s *RosterService) EndAssignment(ctx context.Context, tenantID, assignmentID uuid.UUID, endDate time.Time) (*AssignmentDTO, error) {
	var dto *AssignmentDTO
	err := s.runner.Run(ctx, tenantID, "fleet.end_assignment", func(ctx context.Context, scope *persistence.Scope) error {
		assignment, err := scope.Assignments().FindByID(ctx, assignmentID)
		if err != nil {
			return err
		}
		if err := assignment.End(endDate); err != nil {
			return err
		}
		if err := scope.Assignments().Save(ctx, assignment); err != nil {
			return err
		}
		dto = toAssignmentDTO(assignment)
		return nil
	}, zap.String("assignment_id", assignmentID.String()))
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// CurrentDriverForVehicle returns the driver currently assigned to the vehicle
func (s *RosterService) CurrentDriverForVehicle(ctx context.Context, tenantID, vehicleID uuid.UUID) (*DriverDTO, error) {
	var dto *DriverDTO
	err := s.runner.Run(ctx, tenantID, "fleet.current_driver_for_vehicle", func(ctx context.Context, scope *persistence.Scope) error {
		assignment, err := scope.Assignments().FindOpenByVehicle(ctx, vehicleID)
		if err != nil {
			return err
		}
		driver, err := scope.Drivers().FindByID(ctx, assignment.DriverID)
		if err != nil {
			return err
		}
		dto = toDriverDTO(driver)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// CurrentVehicleForDriver returns the vehicle on the driver's open primary assignment
func (s *RosterService) CurrentVehicleForDriver(ctx context.Context, tenantID, driverID uuid.UUID) (*VehicleDTO, error) {
	var dto *VehicleDTO
	err := s.runner.Run(ctx, tenantID, "fleet.current_vehicle_for_driver", func(ctx context.Context, scope *persistence.Scope) error {
		assignment, err := scope.Assignments().FindOpenPrimaryByDriver(ctx, driverID)
		if err != nil {
			return err
		}
		vehicle, err := scope.Vehicles().FindByID(ctx, assignment.VehicleID)
		if err != nil {
			return err
		}
		dto = toVehicleDTO(vehicle)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// AssignmentHistory lists all assignments for a driver, newest first
func (s *RosterService) AssignmentHistory(ctx context.Context, tenantID, driverID uuid.UUID) ([]AssignmentDTO, error) {
	var dtos []AssignmentDTO
	err := s.runner.Run(ctx, tenantID, "fleet.assignment_history", func(ctx context.Context, scope *persistence.Scope) error {
		assignments, err := scope.Assignments().FindByDriver(ctx, driverID)
		if err != nil {
			return err
		}
		dtos = make([]AssignmentDTO, 0, len(assignments))
		for i := range assignments {
			dtos = append(dtos, *toAssignmentDTO(&assignments[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dtos, nil
}
