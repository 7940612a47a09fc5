package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand/v2"

	"github.com/selftrack/internal/calendar"
	"github.com/selftrack/internal/cli"
	"github.com/selftrack/internal/config"
	"github.com/selftrack/internal/logger"
	"github.com/selftrack/internal/service"
)

var demoHabits = []string{"晨跑", "阅读 20 分钟", "冥想", "写日记"}

var demoJournals = []string{
	"今天状态不错，**按计划**完成了大部分事情。",
	"有点累，早点休息。",
	"读完了一章，记下几个想法：\n- 小步快跑\n- 先做最难的事",
	"",
}

// 测试数据生成器：为本地数据库生成若干天的打卡、日记与心情
func main() {
	days := flag.Int("days", 60, "生成最近多少天的数据")
	seed := flag.Uint64("seed", 42, "随机种子")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("配置加载失败:", err)
	}
	app, err := cli.NewApp(cfg, logger.NewNop())
	if err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成测试数据...")
	summary, err := generateDemoData(app.Tracker, *days, rand.New(rand.NewPCG(*seed, *seed)))
	if err != nil {
		log.Fatal("生成测试数据失败:", err)
	}

	fmt.Println("测试数据生成完成！")
	fmt.Printf("习惯: %d 个\n", summary.Habits)
	fmt.Printf("打卡: %d 次，覆盖 %d 天\n", summary.Checkins, *days)
	fmt.Printf("日记: %d 篇\n", summary.Journals)
}

type demoSummary struct {
	Habits   int
	Checkins int
	Journals int
}

// generateDemoData 只在没有习惯时创建示例习惯，已有数据会在此基础上追加打卡。
func generateDemoData(tracker *service.TrackerService, days int, rng *rand.Rand) (demoSummary, error) {
	var summary demoSummary

	state := tracker.GetState()
	habitIDs := state.HabitIDs()
	if len(habitIDs) == 0 {
		for _, name := range demoHabits {
			habit, err := tracker.AddHabit(name)
			if err != nil {
				return summary, err
			}
			habitIDs = append(habitIDs, habit.ID)
		}
	} else {
		fmt.Println("习惯已存在，跳过创建")
	}
	summary.Habits = len(habitIDs)

	today := tracker.Today()
	for offset := days - 1; offset >= 0; offset-- {
		iso := calendar.AddDays(today, -offset)

		for i, id := range habitIDs {
			// 越靠前的习惯完成率越高
			if rng.Float64() > 0.85-float64(i)*0.1 {
				continue
			}
			if _, err := tracker.ToggleHabitForDate(iso, id, true); err != nil {
				return summary, err
			}
			summary.Checkins++
		}

		if text := demoJournals[rng.IntN(len(demoJournals))]; text != "" {
			if _, err := tracker.SetJournalForDate(iso, text); err != nil {
				return summary, err
			}
			summary.Journals++
		}
		if _, err := tracker.SetMoodForDate(iso, 1+rng.IntN(5), 1+rng.IntN(5)); err != nil {
			return summary, err
		}
	}

	fmt.Println("✅ 打卡数据创建完成")
	return summary, nil
}
