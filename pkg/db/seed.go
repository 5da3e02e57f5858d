package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yumyai/metadraft/pkg/model"
)

// ReactionRecord is one reference reaction as stored, with the category flags
// the loader filters on.
type ReactionRecord struct {
	Reaction     model.Reaction `yaml:",inline"`
	Genes        []string       `yaml:"genes"`
	Transport    bool           `yaml:"transport"`
	Unbalanced   bool           `yaml:"unbalanced"`
	Undetermined bool           `yaml:"undetermined"`
}

// Seed writes reactions, their genes and metabolites in one transaction.
// Genes are registered in the order they are first mentioned.
func (r *ReferenceDB) Seed(ctx context.Context, reactions []ReactionRecord, mets []model.ReferenceMetabolite) error {
	tx, err := r.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("fail to begin tx %w", err)
	}
	defer tx.Rollback()

	for _, rec := range reactions {
		if err := insertReaction(ctx, tx, rec); err != nil {
			return fmt.Errorf("insert reaction %s: %w", rec.Reaction.ID, err)
		}
	}
	for _, m := range mets {
		if err := insertMetabolite(ctx, tx, m); err != nil {
			return fmt.Errorf("insert metabolite %s: %w", m.ID, err)
		}
	}

	return tx.Commit()
}

func insertReaction(ctx context.Context, tx *sql.Tx, rec ReactionRecord) error {
	rx := rec.Reaction
	_, err := tx.ExecContext(ctx, `
		INSERT INTO reactions (reaction_id, name, equation, lower_bound, upper_bound, reversible, objective,
		                       is_transport, is_unbalanced, is_undetermined)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rx.ID, rx.Name, rx.Equation, rx.LowerBound, rx.UpperBound, flag(rx.Reversible), rx.Objective,
		flag(rec.Transport), flag(rec.Unbalanced), flag(rec.Undetermined))
	if err != nil {
		return err
	}

	for i, ec := range rx.ECCodes {
		if _, err := tx.ExecContext(ctx, `INSERT INTO reaction_ec (reaction_id, position, ec_code) VALUES (?, ?, ?)`, rx.ID, i, ec); err != nil {
			return err
		}
	}
	for i, sub := range rx.Subsystems {
		if _, err := tx.ExecContext(ctx, `INSERT INTO reaction_subsystems (reaction_id, position, subsystem) VALUES (?, ?, ?)`, rx.ID, i, sub); err != nil {
			return err
		}
	}
	for _, g := range rec.Genes {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO genes (gene_id) VALUES (?)`, g); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO reaction_genes (reaction_id, gene_id) VALUES (?, ?)`, rx.ID, g); err != nil {
			return err
		}
	}
	return nil
}

func insertMetabolite(ctx context.Context, tx *sql.Tx, m model.ReferenceMetabolite) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO metabolites (met_id, name, formula, charge, inchi) VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.Formula, m.Charge, m.InChI)
	if err != nil {
		return err
	}
	for i, x := range m.Xrefs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO metabolite_xrefs (met_id, position, xref) VALUES (?, ?, ?)`, m.ID, i, x); err != nil {
			return err
		}
	}
	return nil
}
