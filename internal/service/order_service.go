package service

import (
	"context"
	"errors"
	"hash/fnv"
	"math/rand"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/dto"
	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/repository"
)

// OrderService 排序引擎：为每个用户生成确定性的个性化随机顺序。
// 同一作用域（用户 / 用户+说话人）多次解析得到同一排列；
// 目录扩张时新条目乱序追加到已有排列尾部，已有前缀保持不变；
// 目录收缩时消失的条目从排列中剔除并在写回时清除，
// 条目重新出现时视同新条目追加到尾部。
type OrderService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewOrderService 创建排序引擎
func NewOrderService(repo *repository.Repository, logger *zap.Logger) *OrderService {
	return &OrderService{repo: repo, logger: logger}
}

// speakerScope 说话人排序的作用域键：每个用户一个
func speakerScope(username string) string { return username }

// audioScope 音频排序的作用域键：每个 (用户, 说话人) 一个
func audioScope(username, speaker string) string { return username + "_" + speaker }

// orderSeed 由作用域字符串推导确定性随机种子
func orderSeed(scope string) int64 {
	h := fnv.New32a()
	h.Write([]byte(scope))
	return int64(h.Sum32())
}

// shuffled 返回 items 的确定性乱序副本，不修改入参
func shuffled(items []string, seed int64) []string {
	out := make([]string, len(items))
	copy(out, items)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// resolveOrder 排序调和：
//   - 首次解析（stored 为空）：整个目录按作用域种子乱序；
//   - 增量扩张：目录新增条目按带盐种子（scope+"_new"）乱序后追加；
//   - 目录收缩：stored 中已不在目录的条目从序列中剔除，写回时
//     即被清除，之后重新出现的条目视同新条目追加到尾部。
//
// 返回可见序列、应持久化的列表以及是否需要写回。
func resolveOrder(scope string, catalog, stored []string) (visible, toStore []string, dirty bool) {
	if len(stored) == 0 {
		toStore = shuffled(catalog, orderSeed(scope))
		return toStore, toStore, len(toStore) > 0
	}

	inCatalog := make(map[string]bool, len(catalog))
	for _, it := range catalog {
		inCatalog[it] = true
	}

	known := make(map[string]bool, len(stored))
	visible = make([]string, 0, len(catalog))
	for _, it := range stored {
		known[it] = true
		if inCatalog[it] {
			visible = append(visible, it)
		}
	}

	var fresh []string
	for _, it := range catalog {
		if !known[it] {
			fresh = append(fresh, it)
		}
	}
	if len(fresh) == 0 {
		// 有条目消失时仍要写回，持久化清除后的列表
		return visible, visible, len(visible) != len(stored)
	}

	// 新条目使用独立种子乱序，避免与首次排列产生位置相关性
	fresh = shuffled(fresh, orderSeed(scope+"_new"))
	toStore = make([]string, 0, len(visible)+len(fresh))
	toStore = append(toStore, visible...)
	toStore = append(toStore, fresh...)
	return toStore, toStore, true
}

// SpeakerOrder 返回用户在指定分组内的说话人个性化顺序
func (s *OrderService) SpeakerOrder(ctx context.Context, username string, groupID int) ([]string, error) {
	catalog, err := s.repo.Group.ListSpeakerIDs(ctx, groupID)
	if err != nil {
		return nil, err
	}
	scope := speakerScope(username)

	var stored []string
	rec, err := s.repo.Order.GetSpeakerOrder(ctx, username)
	switch {
	case err == nil:
		stored = rec.SpeakerOrder
	case errors.Is(err, gorm.ErrRecordNotFound):
		// 首次解析
	default:
		// 读排序失败不阻断标注：降级为临时顺序，本次不持久化
		s.logger.Warn("读取说话人排序失败，使用临时顺序",
			zap.String("username", username), zap.Error(err))
		visible, _, _ := resolveOrder(scope, catalog, nil)
		return visible, nil
	}

	visible, toStore, dirty := resolveOrder(scope, catalog, stored)
	if dirty {
		if err := s.repo.Order.SaveSpeakerOrder(ctx, username, toStore); err != nil {
			s.logger.Warn("保存说话人排序失败，本次顺序不持久化",
				zap.String("username", username), zap.Error(err))
		}
	}
	return visible, nil
}

// AudioOrder 返回用户在指定说话人下的音频文件个性化顺序
func (s *OrderService) AudioOrder(ctx context.Context, username, speaker string) ([]string, error) {
	catalog, err := s.repo.Group.ListAudioFiles(ctx, speaker)
	if err != nil {
		return nil, err
	}
	scope := audioScope(username, speaker)

	var stored []string
	rec, err := s.repo.Order.GetAudioOrder(ctx, username, speaker)
	switch {
	case err == nil:
		stored = rec.AudioOrder
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		s.logger.Warn("读取音频排序失败，使用临时顺序",
			zap.String("username", username), zap.String("speaker", speaker), zap.Error(err))
		visible, _, _ := resolveOrder(scope, catalog, nil)
		return visible, nil
	}

	visible, toStore, dirty := resolveOrder(scope, catalog, stored)
	if dirty {
		if err := s.repo.Order.SaveAudioOrder(ctx, username, speaker, toStore); err != nil {
			s.logger.Warn("保存音频排序失败，本次顺序不持久化",
				zap.String("username", username), zap.String("speaker", speaker), zap.Error(err))
		}
	}
	return visible, nil
}

// DeleteUserOrders 删除用户的全部排序记录（管理员重置用）
func (s *OrderService) DeleteUserOrders(ctx context.Context, username string) error {
	return s.repo.Order.DeleteByUsername(ctx, username)
}

// Stats 返回用户排序持久化统计
func (s *OrderService) Stats(ctx context.Context, username string) (*dto.OrderStatsResponse, error) {
	speakerOrders, audioOrders, err := s.repo.Order.CountByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return &dto.OrderStatsResponse{
		Username:      username,
		SpeakerOrders: speakerOrders,
		AudioOrders:   audioOrders,
	}, nil
}
