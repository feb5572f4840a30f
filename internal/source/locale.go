package source

import (
	"github.com/brianvoe/gofakeit/v7"
	"golang.org/x/text/language"
)

type vocabulary struct {
	tag        language.Tag
	isbnGroups []string
	firstName  func(f *gofakeit.Faker) string
	lastName   func(f *gofakeit.Faker) string
	title      func(f *gofakeit.Faker) string
}

// Order must match the tags given to matcher.
var vocabularies = []*vocabulary{
	{
		tag:        language.English,
		isbnGroups: []string{"0", "1"},
		firstName:  (*gofakeit.Faker).FirstName,
		lastName:   (*gofakeit.Faker).LastName,
		title:      (*gofakeit.Faker).BookTitle,
	},
	{
		tag:        language.Japanese,
		isbnGroups: []string{"4"},
		firstName: func(f *gofakeit.Faker) string {
			return f.RandomString(jaFirstNames)
		},
		lastName: func(f *gofakeit.Faker) string {
			return f.RandomString(jaLastNames)
		},
		title: func(f *gofakeit.Faker) string {
			return f.RandomString(jaTitleWords) + "の" + f.RandomString(jaTitleWords)
		},
	},
}

var matcher = language.NewMatcher([]language.Tag{language.English, language.Japanese})

// Supported lists the locales a FieldSource can be built for.
func Supported() []language.Tag {
	tags := make([]language.Tag, 0, len(vocabularies))
	for _, v := range vocabularies {
		tags = append(tags, v.tag)
	}

	return tags
}

var (
	jaFirstNames = []string{
		"太郎", "花子", "翔太", "陽菜", "蓮", "結衣", "大翔", "美咲", "健太", "愛",
		"悠真", "さくら", "拓海", "葵", "直樹", "由美", "誠", "恵子", "隆", "明美",
	}
	jaLastNames = []string{
		"佐藤", "鈴木", "高橋", "田中", "伊藤", "渡辺", "山本", "中村", "小林", "加藤",
		"吉田", "山田", "佐々木", "山口", "松本", "井上", "木村", "林", "斎藤", "清水",
	}
	jaTitleWords = []string{
		"夜", "海", "風", "記憶", "約束", "旅", "森", "星", "桜", "物語",
		"影", "光", "雪", "街", "夢", "時間", "硝子", "猫", "庭", "手紙",
	}
)

// CheckLocale reports ErrUnsupportedLocale for tags New would reject.
func CheckLocale(locale string) error {
	_, err := lookup(locale)
	return err
}
