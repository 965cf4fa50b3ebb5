package domain

import "fmt"

const (
	MaxWishlistSpots = 100
	MaxPlans         = 20
	MaxSpotsPerDay   = 10
	MaxPlanDays      = 7
	MaxMemoLength    = 1000

	MinWishlistPriority = 1
	MaxWishlistPriority = 5

	MaxNotificationTitleLength   = 100
	MaxNotificationContentLength = 5000
)

var (
	WishlistLimitMessage = fmt.Sprintf("行きたいリストに登録できるのは%d件までです", MaxWishlistSpots)
	PlanLimitMessage     = fmt.Sprintf("作成できるプランは%d件までです", MaxPlans)
	SpotsPerDayMessage   = fmt.Sprintf("1日に登録できるスポットは%d件までです", MaxSpotsPerDay)
	PlanDaysMessage      = fmt.Sprintf("旅行期間は%d日以内で設定してください", MaxPlanDays)
	MemoLengthMessage    = fmt.Sprintf("メモは%d文字以内で入力してください", MaxMemoLength)
)

type LimitMessages struct {
	Wishlist    string `json:"wishlist"`
	Plans       string `json:"plans"`
	SpotsPerDay string `json:"spotsPerDay"`
	PlanDays    string `json:"planDays"`
	Memo        string `json:"memo"`
}

type AppLimits struct {
	MaxWishlistSpots int           `json:"maxWishlistSpots"`
	MaxPlans         int           `json:"maxPlans"`
	MaxSpotsPerDay   int           `json:"maxSpotsPerDay"`
	MaxPlanDays      int           `json:"maxPlanDays"`
	MaxMemoLength    int           `json:"maxMemoLength"`
	Messages         LimitMessages `json:"messages"`
}

func Limits() AppLimits {
	return AppLimits{
		MaxWishlistSpots: MaxWishlistSpots,
		MaxPlans:         MaxPlans,
		MaxSpotsPerDay:   MaxSpotsPerDay,
		MaxPlanDays:      MaxPlanDays,
		MaxMemoLength:    MaxMemoLength,
		Messages: LimitMessages{
			Wishlist:    WishlistLimitMessage,
			Plans:       PlanLimitMessage,
			SpotsPerDay: SpotsPerDayMessage,
			PlanDays:    PlanDaysMessage,
			Memo:        MemoLengthMessage,
		},
	}
}
