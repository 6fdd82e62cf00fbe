package store

// Rank is the reader's title, derived from how many articles they opened.
type Rank string

const (
	RankWeakWarrior     Rank = "weak_warrior"
	RankGettingStarted  Rank = "getting_started"
	RankInformedCitizen Rank = "informed_citizen"
	RankNewsHound       Rank = "news_hound"
	RankTopReader       Rank = "top_reader"
)

// ReaderRank maps a read count onto a Rank.
func ReaderRank(reads int) Rank {
	switch {
	case reads > 50:
		return RankTopReader
	case reads > 25:
		return RankNewsHound
	case reads > 10:
		return RankInformedCitizen
	case reads > 0:
		return RankGettingStarted
	default:
		return RankWeakWarrior
	}
}
