package lovelace

const defaultColumns = 2

// StackHorizontal groups runs of consecutive cards that share a type into
// horizontal stacks. columns maps a card type to the stack width; types that
// are missing (or map to zero) use two columns, and widths below one are
// raised to one. Order is preserved.
func StackHorizontal(cards []Card, columns map[string]int) []Card {
	stacked := make([]Card, 0, len(cards))

	for i := 0; i < len(cards); {
		cardType := cards[i].Type()

		run := i
		for run < len(cards) && cards[run].Type() == cardType {
			run++
		}

		width := columns[cardType]
		if width == 0 {
			width = defaultColumns
		}
		width = max(width, 1)

		for start := i; start < run; start += width {
			end := min(start+width, run)
			stacked = append(stacked, Card{
				"type":  TypeHorizontalStack,
				"cards": append([]Card(nil), cards[start:end]...),
			})
		}
		i = run
	}

	return stacked
}

// VerticalStack wraps cards in a vertical stack.
func VerticalStack(cards ...Card) Card {
	if cards == nil {
		cards = []Card{}
	}
	return Card{"type": TypeVerticalStack, "cards": cards}
}
