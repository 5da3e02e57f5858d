package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yumyai/metadraft/logger"
	"github.com/yumyai/metadraft/pkg/model"
	"github.com/yumyai/metadraft/pkg/sparse"
	"go.uber.org/zap"
)

// LoadOptions selects which flagged reaction categories stay in the
// reference. All of them are excluded by default.
type LoadOptions struct {
	KeepTransport    bool
	KeepUnbalanced   bool
	KeepUndetermined bool
}

// LoadReferenceModel reads reactions (in insertion order), the reference gene
// list and the reaction-gene associations of the retained reactions.
func (r *ReferenceDB) LoadReferenceModel(ctx context.Context, opts LoadOptions) (*model.ReferenceModel, error) {

	qstring := `
		SELECT reaction_id, name, equation, lower_bound, upper_bound, reversible, objective
		FROM reactions
		WHERE (? OR is_transport = 0)
		  AND (? OR is_unbalanced = 0)
		  AND (? OR is_undetermined = 0)
		ORDER BY rowid;
	`

	stm, err := r.sql.PrepareContext(ctx, qstring)
	if err != nil {
		return nil, err
	}
	defer stm.Close()

	rows, err := stm.QueryContext(ctx, flag(opts.KeepTransport), flag(opts.KeepUnbalanced), flag(opts.KeepUndetermined))
	if err != nil {
		return nil, fmt.Errorf("query reactions: %w", err)
	}
	defer rows.Close()

	reactions := make([]model.Reaction, 0, 1024)
	for rows.Next() {
		var rx model.Reaction
		var reversible int
		if err := rows.Scan(&rx.ID, &rx.Name, &rx.Equation, &rx.LowerBound, &rx.UpperBound, &reversible, &rx.Objective); err != nil {
			return nil, fmt.Errorf("scan reaction: %w", err)
		}
		rx.Reversible = reversible != 0
		reactions = append(reactions, rx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read reactions: %w", err)
	}

	index := make(map[string]int, len(reactions))
	ids := make([]string, len(reactions))
	for i, rx := range reactions {
		index[rx.ID] = i
		ids[i] = rx.ID
	}

	err = r.eachString(ctx, `SELECT reaction_id, ec_code FROM reaction_ec ORDER BY reaction_id, position`, func(id, ec string) error {
		if i, ok := index[id]; ok {
			reactions[i].ECCodes = append(reactions[i].ECCodes, ec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = r.eachString(ctx, `SELECT reaction_id, subsystem FROM reaction_subsystems ORDER BY reaction_id, position`, func(id, sub string) error {
		if i, ok := index[id]; ok {
			reactions[i].Subsystems = append(reactions[i].Subsystems, sub)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	genes, err := r.geneIDs(ctx)
	if err != nil {
		return nil, err
	}

	inc, err := sparse.NewIncidence(ids, genes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	skipped := 0
	err = r.eachString(ctx, `SELECT reaction_id, gene_id FROM reaction_genes`, func(rxn, gene string) error {
		if _, ok := index[rxn]; !ok {
			skipped++
			return nil
		}
		if err := inc.Set(rxn, gene); err != nil {
			return fmt.Errorf("%w: reaction %s: %v", ErrSchema, rxn, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Loaded reference model",
		zap.Int("reactions", len(reactions)),
		zap.Int("genes", len(genes)),
		zap.Int("associations", inc.NNZ()),
		zap.Int("associations_of_excluded", skipped))

	return &model.ReferenceModel{Reactions: reactions, Genes: genes, RxnGeneMat: inc}, nil
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (r *ReferenceDB) geneIDs(ctx context.Context) ([]string, error) {
	rows, err := r.sql.QueryContext(ctx, `SELECT gene_id FROM genes ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query genes: %w", err)
	}
	defer rows.Close()

	var genes []string
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, fmt.Errorf("scan gene: %w", err)
		}
		genes = append(genes, g)
	}
	return genes, rows.Err()
}

// eachString runs a two-column text query and hands every row to fn.
func (r *ReferenceDB) eachString(ctx context.Context, query string, fn func(a, b string) error) error {
	rows, err := r.sql.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a, b string
		if err := rows.Scan(&a, &b); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		if err := fn(a, b); err != nil {
			return err
		}
	}
	return rows.Err()
}

// LoadMetabolites reads the whole reference metabolite table.
func (r *ReferenceDB) LoadMetabolites(ctx context.Context) (*model.ReferenceMetaboliteTable, error) {
	rows, err := r.sql.QueryContext(ctx, `SELECT met_id, name, formula, charge, inchi FROM metabolites ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query metabolites: %w", err)
	}
	defer rows.Close()

	mets := make([]model.ReferenceMetabolite, 0, 1024)
	index := make(map[string]int)
	for rows.Next() {
		var m model.ReferenceMetabolite
		if err := rows.Scan(&m.ID, &m.Name, &m.Formula, &m.Charge, &m.InChI); err != nil {
			return nil, fmt.Errorf("scan metabolite: %w", err)
		}
		index[m.ID] = len(mets)
		mets = append(mets, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read metabolites: %w", err)
	}

	err = r.eachString(ctx, `SELECT met_id, xref FROM metabolite_xrefs ORDER BY met_id, position`, func(id, xref string) error {
		if i, ok := index[id]; ok {
			mets[i].Xrefs = append(mets[i].Xrefs, xref)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return model.NewReferenceMetaboliteTable(mets), nil
}

// Stats is a quick count of the stored rows, used by the health endpoint.
type Stats struct {
	Reactions   int `json:"reactions"`
	Genes       int `json:"genes"`
	Metabolites int `json:"metabolites"`
}

func (r *ReferenceDB) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := r.sql.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM reactions),
		       (SELECT COUNT(*) FROM genes),
		       (SELECT COUNT(*) FROM metabolites)`).Scan(&s.Reactions, &s.Genes, &s.Metabolites)
	if err != nil && err != sql.ErrNoRows {
		return s, fmt.Errorf("count rows: %w", err)
	}
	return s, nil
}
