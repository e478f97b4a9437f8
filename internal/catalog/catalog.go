// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package catalog declares the entities served by the data service and the
// accessor each one uses.
package catalog

import (
	"sort"

	"sqlbridge/cli/internal/accessor"
	"sqlbridge/cli/internal/dialect"
	"sqlbridge/cli/internal/entity"
	apperrors "sqlbridge/cli/internal/errors"
)

// Entry ties an entity descriptor to its accessor constructor.
type Entry struct {
	Descriptor *entity.Descriptor
	accessor   func(dialect.Dialect, *entity.Descriptor) accessor.Accessor
}

// Accessor returns the entity's accessor for d.
func (e Entry) Accessor(d dialect.Dialect) accessor.Accessor {
	return e.accessor(d, e.Descriptor)
}

var (
	Paises = entity.MustDescriptor("paises", "tb_paises", []string{"paises_codigo"},
		entity.NewField("paises_codigo", entity.TypeString),
		entity.NewField("paises_descripcion", entity.TypeString),
		entity.NewField("paises_entidad", entity.TypeBoolean),
		entity.NewField("regiones_codigo", entity.TypeString),
		entity.NewField("paises_use_apm", entity.TypeBoolean),
		entity.NewField("paises_use_docs", entity.TypeBoolean),
		entity.NewField("paises_protected", entity.TypeBoolean, entity.OpReadOnly),
		entity.NewField("version", entity.TypeRowVersion, entity.OpReadOnly),
	)

	Regiones = entity.MustDescriptor("regiones", "tb_regiones", []string{"regiones_codigo"},
		entity.NewField("regiones_codigo", entity.TypeString),
		entity.NewField("regiones_descripcion", entity.TypeString),
		entity.NewField("regiones_protected", entity.TypeBoolean, entity.OpReadOnly),
		entity.NewField("version", entity.TypeRowVersion, entity.OpReadOnly),
	)

	Atletas = entity.MustDescriptor("atletas", "tb_atletas", []string{"atletas_codigo"},
		entity.NewField("atletas_codigo", entity.TypeString),
		entity.NewField("atletas_ap_paterno", entity.TypeString),
		entity.NewField("atletas_ap_materno", entity.TypeString),
		entity.NewField("atletas_nombres", entity.TypeString),
		entity.NewField("atletas_nombre_completo", entity.TypeString, entity.OpComputed),
		entity.NewField("atletas_sexo", entity.TypeString),
		entity.NewField("atletas_nro_documento", entity.TypeString),
		entity.NewField("paises_codigo", entity.TypeString),
		entity.NewField("atletas_fecha_nacimiento", entity.TypeDate),
		entity.NewField("atletas_agno", entity.TypeNumeric, entity.OpComputed),
		entity.NewField("atletas_email", entity.TypeString),
		entity.NewField("atletas_protected", entity.TypeBoolean, entity.OpReadOnly),
		entity.NewField("version", entity.TypeRowVersion, entity.OpReadOnly),
	)
)

var entries = map[string]Entry{
	"paises": {Descriptor: Paises, accessor: func(d dialect.Dialect, desc *entity.Descriptor) accessor.Accessor {
		return accessor.NewPaises(d, desc)
	}},
	"regiones": {Descriptor: Regiones, accessor: func(d dialect.Dialect, desc *entity.Descriptor) accessor.Accessor {
		return accessor.NewProtected(d, desc, "regiones_protected")
	}},
	"atletas": {Descriptor: Atletas, accessor: func(d dialect.Dialect, desc *entity.Descriptor) accessor.Accessor {
		return accessor.NewAtletas(d, desc)
	}},
}

// Lookup returns the entry registered as name.
func Lookup(name string) (Entry, error) {
	e, ok := entries[name]
	if !ok {
		return Entry{}, apperrors.Newf(apperrors.UnknownEntity, "unknown entity %q", name)
	}
	return e, nil
}

// Names lists the registered entity names, sorted.
func Names() []string {
	out := make([]string, 0, len(entries))
	for n := range entries {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
