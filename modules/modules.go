package modules

import (
	"github.com/dwoolworth/bizdesk"
	"github.com/dwoolworth/bizdesk/models"
)

// Services bundles the module services sharing one store and one gate.
type Services struct {
	Compras      *Compras
	PCP          *PCP
	PD           *PD
	Garantia     *Garantia
	Regulatorios *Regulatorios
	Comercial    *Comercial
	Errors       *Errors
}

// New builds every module service on db, guarded by gate.
func New(db *bizdesk.DB, gate Authorizer) (*Services, error) {
	s := &Services{}
	var err error

	if s.Compras, err = newCompras(db, gate); err != nil {
		return nil, err
	}
	if s.PCP, err = newPCP(db, gate); err != nil {
		return nil, err
	}
	if s.PD, err = newPD(db, gate); err != nil {
		return nil, err
	}
	if s.Garantia, err = newGarantia(db, gate); err != nil {
		return nil, err
	}
	if s.Regulatorios, err = newRegulatorios(db, gate); err != nil {
		return nil, err
	}
	if s.Comercial, err = newComercial(db, gate); err != nil {
		return nil, err
	}
	if s.Errors, err = newErrors(db, gate); err != nil {
		return nil, err
	}
	return s, nil
}

// Tags lists the module tags in menu order.
func Tags() []string {
	return models.Modules
}
