package invoicing

import (
	"encoding/json"
	"strings"
)

type rawObject = map[string]json.RawMessage

// itemProbe extracts the itemised list from a summary response. The
// provider has shipped it under several names; probes run in priority order
// and the first non-empty list wins.
type itemProbe func(root rawObject) []rawObject

var itemProbes = []itemProbe{
	listAt("produtosVendidos"),
	listAt("listaProdutos"),
	listAt("produtos"),
	listAt("itens"),
}

func listAt(key string) itemProbe {
	return func(root rawObject) []rawObject {
		raw, ok := root[key]
		if !ok {
			return nil
		}
		var items []rawObject
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil
		}
		return items
	}
}

func probeItems(root rawObject) []rawObject {
	for _, probe := range itemProbes {
		if items := probe(root); len(items) > 0 {
			return items
		}
	}
	return nil
}

var (
	descriptionKeys = []string{"cDescricao", "descricao", "cDescrProduto"}
	codeKeys        = []string{"cCodigo", "codigo", "cCodProduto"}
	quantityKeys    = []string{"nQtde", "quantidade", "nQuantidade"}
	valueKeys       = []string{"vTotal", "valor", "vFaturado"}
)

func toLineItem(raw rawObject) (LineItem, error) {
	qty, err := amountAt(raw, quantityKeys)
	if err != nil {
		return LineItem{}, err
	}
	value, err := amountAt(raw, valueKeys)
	if err != nil {
		return LineItem{}, err
	}
	return LineItem{
		Code:        stringAt(raw, codeKeys),
		Description: stringAt(raw, descriptionKeys),
		Quantity:    qty,
		Value:       value,
	}, nil
}

func stringAt(raw rawObject, keys []string) string {
	for _, key := range keys {
		if v, ok := raw[key]; ok {
			if s := rawString(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func amountAt(raw rawObject, keys []string) (float64, error) {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok {
			continue
		}
		var a Amount
		if err := json.Unmarshal(v, &a); err != nil {
			return 0, err
		}
		return a.InexactFloat64(), nil
	}
	return 0, nil
}

// rawString renders a JSON string or number as plain text.
func rawString(v json.RawMessage) string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return n.String()
	}
	return ""
}
