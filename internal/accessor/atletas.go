// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package accessor

import (
	"sqlbridge/cli/internal/dialect"
	"sqlbridge/cli/internal/entity"
	apperrors "sqlbridge/cli/internal/errors"
)

// Field and routine names of the athletes entity.
const (
	AtletasSaveRoutine  = "sp_atletas_save_record"
	atletasBirthDate    = "atletas_fecha_nacimiento"
	atletasYear         = "atletas_agno"
	atletasFullName     = "atletas_nombre_completo"
	atletasPaternalName = "atletas_ap_paterno"
	atletasMaternalName = "atletas_ap_materno"
	atletasGivenNames   = "atletas_nombres"
)

// Atletas reads athletes with their birth year and full name computed, and
// writes them through a stored routine that validates the record. Protected
// athletes cannot be removed.
type Atletas struct {
	*Protected
}

// NewAtletas returns the athletes accessor.
func NewAtletas(d dialect.Dialect, desc *entity.Descriptor) *Atletas {
	p := NewProtected(d, desc, "atletas"+protectedSuffix)
	b := p.Base
	if desc.Has(atletasYear) {
		b.Compute(atletasYear, d.YearOf(d.QuoteIdent(atletasBirthDate)))
	}
	if desc.Has(atletasFullName) {
		b.Compute(atletasFullName, d.ConcatWS(" ",
			d.QuoteIdent(atletasPaternalName),
			d.QuoteIdent(atletasMaternalName),
			d.QuoteIdent(atletasGivenNames)))
	}
	return &Atletas{Protected: p}
}

// SaveCall builds the routine invocation shared by add and update. Arguments
// follow declaration order, skipping fields that cannot be added; the
// version token and the is-update flag come last.
//
// On update the routine keeps the stored value of every NULL argument and
// clears an optional column given the empty string, so a text field the
// client set to null is passed as the empty string.
func (a *Atletas) SaveCall(rec *entity.Record, isUpdate bool) (dialect.Call, error) {
	if _, err := rec.KeyValues(); err != nil {
		return dialect.Call{}, err
	}
	call := dialect.Call{Routine: AtletasSaveRoutine, Kind: dialect.Procedure}
	for _, f := range a.desc.Fields() {
		if !f.Addable() || f.Type == entity.TypeRowVersion {
			continue
		}
		v := rec.Value(f.Name)
		if isUpdate && v == nil && rec.IsSet(f.Name) && f.Type == entity.TypeString {
			v = ""
		}
		call.Args = append(call.Args, dialect.Arg{Name: f.Name, Value: v, Type: f.Type})
	}
	var version any
	if name, ok := a.desc.VersionField(); ok {
		version = rec.Value(name)
	}
	if isUpdate && version == nil {
		return dialect.Call{}, apperrors.Newf(apperrors.InvalidArgument, "update of %s needs the record version", a.desc.Name())
	}
	call.Args = append(call.Args,
		dialect.Arg{Name: "version", Value: version, Type: entity.TypeRowVersion},
		dialect.Arg{Name: "is_update", Value: isUpdate, Type: entity.TypeBoolean},
	)
	return call, nil
}

func (a *Atletas) AddQuery(rec *entity.Record) (string, error) {
	call, err := a.SaveCall(rec, false)
	if err != nil {
		return "", err
	}
	return a.d.Callable(call)
}

func (a *Atletas) UpdateQuery(rec *entity.Record) (string, error) {
	call, err := a.SaveCall(rec, true)
	if err != nil {
		return "", err
	}
	return a.d.Callable(call)
}
