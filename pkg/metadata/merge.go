package metadata

// Merge combines an existing authoritative record with an incoming provider
// candidate under the given lock state. Locked fields keep the existing value;
// unlocked fields take the incoming value even when the provider supplied
// nothing, since an unlocked field means the provider is authoritative.
// Authors and categories are replaced wholesale, never unioned.
//
// The second return value reports whether the cover image should be replaced:
// true only when replaceCover was requested and the cover field is not locked.
// Merge itself is pure; writing the cover asset and stamping CoverUpdatedOn is
// the caller's job once the asset write succeeds.
func Merge(existing, incoming Record, locks FieldLocks, replaceCover bool) (Record, bool) {
	out := existing

	if !locks.IsLocked(FieldTitle) {
		out.Title = incoming.Title
	}
	if !locks.IsLocked(FieldSubtitle) {
		out.Subtitle = incoming.Subtitle
	}
	if !locks.IsLocked(FieldPublisher) {
		out.Publisher = incoming.Publisher
	}
	if !locks.IsLocked(FieldPublishedDate) {
		out.PublishedDate = incoming.PublishedDate
	}
	if !locks.IsLocked(FieldDescription) {
		out.Description = incoming.Description
	}
	if !locks.IsLocked(FieldSeriesName) {
		out.SeriesName = incoming.SeriesName
	}
	if !locks.IsLocked(FieldSeriesNumber) {
		out.SeriesNumber = incoming.SeriesNumber
	}
	if !locks.IsLocked(FieldSeriesTotal) {
		out.SeriesTotal = incoming.SeriesTotal
	}
	if !locks.IsLocked(FieldISBN13) {
		out.ISBN13 = incoming.ISBN13
	}
	if !locks.IsLocked(FieldISBN10) {
		out.ISBN10 = incoming.ISBN10
	}
	if !locks.IsLocked(FieldPageCount) {
		out.PageCount = incoming.PageCount
	}
	if !locks.IsLocked(FieldLanguage) {
		out.Language = incoming.Language
	}
	if !locks.IsLocked(FieldRating) {
		out.Rating = incoming.Rating
		out.RatingCount = incoming.RatingCount
	}
	if !locks.IsLocked(FieldReviewCount) {
		out.ReviewCount = incoming.ReviewCount
	}
	if !locks.IsLocked(FieldAuthors) {
		out.Authors = cloneStrings(incoming.Authors)
	}
	if !locks.IsLocked(FieldCategories) {
		out.Categories = cloneStrings(incoming.Categories)
	}

	// Provenance follows the incoming record unless every field is locked, in
	// which case nothing of the candidate was taken.
	if !locks.All {
		out.Provider = incoming.Provider
		out.ProviderBookID = incoming.ProviderBookID
		out.ThumbnailURL = incoming.ThumbnailURL
	}

	return out, replaceCover && !locks.IsLocked(FieldCover)
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
