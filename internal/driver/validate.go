package driver

import (
	"moveflow/internal/diag"
	"moveflow/internal/mir"
)

// reportValidation turns the findings of mir.Check into diagnostics and
// reports whether body must be skipped by the gatherer.
func reportValidation(r diag.Reporter, body *mir.Body, typer *mir.Typer) bool {
	findings := mir.Check(body, typer)
	for _, f := range findings {
		diag.ReportError(r, validationCode(f.Kind), f.Span, f.Error()).Emit()
	}
	return len(findings) > 0
}

func validationCode(kind mir.ValidationKind) diag.Code {
	switch kind {
	case mir.ValidateNoBlocks:
		return diag.ValNoBlocks
	case mir.ValidateBadArgCount:
		return diag.ValBadArgCount
	case mir.ValidateUnterminated:
		return diag.ValUnterminated
	case mir.ValidateBadBlock:
		return diag.ValBadBlock
	case mir.ValidateBadLocal:
		return diag.ValBadLocal
	case mir.ValidateBadProjection:
		return diag.ValBadProjection
	case mir.ValidateBadSubslice:
		return diag.ValBadSubslice
	case mir.ValidateBadConstantIndex:
		return diag.ValBadConstantIndex
	case mir.ValidateSetDiscriminant:
		return diag.ValSetDiscriminant
	default:
		return diag.ValInfo
	}
}
