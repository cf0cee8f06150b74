// Package pager implements incremental, offset-based loading of a remote list.
//
// A Loader holds an append-only list of items fetched page by page. The first
// page is requested with the initial page size, every following page with the
// load-more page size, always at offset len(items).
//
// # Has-more Heuristic
//
// The API does not report a total count. A page that comes back full is
// taken to mean more items may follow; a short or empty page ends the list.
// When the total is an exact multiple of the page size, the loader performs
// one extra fetch that returns nothing and then stops.
//
// # Usage Example
//
//	loader, err := pager.New(apiclient.BusinessFetcher(client, "cat-42", true), pager.Config{
//	    Name:             "businesses",
//	    InitialPageSize:  10,
//	    LoadMorePageSize: 10,
//	})
//	if err != nil {
//	    return err
//	}
//	if err := loader.LoadInitial(ctx); err != nil {
//	    return err
//	}
//	for loader.HasMore() {
//	    if err := loader.LoadMore(ctx); err != nil {
//	        return err
//	    }
//	}
//
// # Concurrency
//
// The in-flight checks of LoadMore are made under the loader's mutex, so two
// racing calls can never fetch the same offset twice. LoadInitial, Refresh and
// Reset start a new generation; a fetch that completes under an older
// generation is dropped and reports ErrSuperseded instead of overwriting
// newer state.
package pager
