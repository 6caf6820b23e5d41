/*
Package slides replays grouped experiments and produces one slide per batch.

Batch i holds the i-th operation of every well that has one, taken in
ascending well order. The batches are positional, not dependency aware: the
i-th operations of all wells are treated as one parallel step. Well state
accumulates across batches, so every slide shows the cumulative plate contents
after its batch, together with a title describing what the batch did.

	deck, err := slides.New().Build(exps)
	if err != nil {
		return err
	}
	for _, s := range deck.Slides {
		fmt.Println(s.Title)
	}
*/
package slides
