package runtime

import (
	"fmt"
	"slices"

	"github.com/aretw0/diastole/pkg/domain"
	"github.com/aretw0/diastole/pkg/ports"
)

// Render projects the current node for presentation. Evaluators are never
// rendered; a state resting on one must be settled first.
func (e *Engine) Render(state *domain.State, catalog ports.ResultCatalog) (*domain.NodeView, error) {
	node, err := e.Current(state)
	if err != nil {
		return nil, err
	}
	r := &renderer{catalog: catalog}
	if err := node.Accept(r); err != nil {
		return nil, err
	}
	return r.view, nil
}

type renderer struct {
	catalog ports.ResultCatalog
	view    *domain.NodeView
}

func (r *renderer) VisitDecision(d *domain.Decision) error {
	r.view = &domain.NodeView{
		ID:       d.ID,
		Type:     domain.NodeTypeDecision,
		Question: d.Question,
		Options:  slices.Clone(d.Options),
	}
	return nil
}

func (r *renderer) VisitEvaluator(ev *domain.Evaluator) error {
	return fmt.Errorf("%w: evaluator %q is not displayable", domain.ErrUnsupportedNode, ev.ID)
}

func (r *renderer) VisitResult(res *domain.Result) error {
	r.view = &domain.NodeView{
		ID:        res.ID,
		Type:      domain.NodeTypeResult,
		ResultKey: res.ResultKey,
	}
	if r.catalog != nil {
		if out, ok := r.catalog.Lookup(res.ResultKey); ok {
			r.view.Result = &out
		}
	}
	return nil
}
